package ecs

// UpdateFrame is handed to every system update within one world step.
type UpdateFrame struct {
	DeltaTime float64
	Elapsed   float64
	Step      uint64
	Commands  *Commands
	World     *World
}

func (f *UpdateFrame) reset(dt, elapsed float64, step uint64) {
	f.DeltaTime = dt
	f.Elapsed = elapsed
	f.Step = step
}

// Events is shorthand for the world's event system.
func (f *UpdateFrame) Events() *EventSystem {
	return f.World.events
}
