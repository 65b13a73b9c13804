package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/spaces/ecs"
)

type Report struct {
	// Configuration
	Duration      time.Duration
	Entities      int
	Spaces        int
	ChurnPerFrame int

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	FinalEntities  int
	Spawned        int
	Destroyed      int
	Expired        int
	Extinguished   int
	Pools          []ecs.ComponentInfo
	Systems        []ecs.SystemStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Total   time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	s.Total = 0
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		s.Total += sample
	}
	s.Avg = s.Total / time.Duration(len(s.Samples))
}

// fill copies the simulation's outcome into the report.
func (r *Report) fill(sim *simulation) {
	r.TotalUpdates = int64(len(r.UpdateTime.Samples))
	r.TotalTime = time.Duration(sim.world.Elapsed() * float64(time.Second))
	r.FinalEntities = sim.live.Len()
	r.Spawned = sim.spawned
	r.Destroyed = sim.destroyed
	r.Expired = sim.expired
	r.Extinguished = sim.extinguished

	stats := sim.world.CollectStats()
	r.Pools = stats.Components
	r.Systems = stats.Scheduler.Systems
}

const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Live Entities:** {{.Entities}}
- **Spaces:** {{.Spaces}}
- **Churn Per Frame:** {{.ChurnPerFrame}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Simulated Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Entity Churn
- Final live entities: {{.FinalEntities}}
- Spawned: {{.Spawned}}, destroyed: {{.Destroyed}}
- Expired events: {{.Expired}}, extinguished events: {{.Extinguished}}

## Systems
{{range .Systems}}- {{.Name}} (priority {{.Priority}}): {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}
## Component Storage
{{range .Pools}}- {{.Type}}: {{if .Pooled}}pooled size {{.Pool.Size}}, available {{.Pool.Available}}, used {{.Pool.Used}}{{else}}transient, live {{.Pool.Used}}{{end}}
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc | mb}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc | mb}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys | mb}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{ns .MemStatsEnd.PauseTotalNs}}
- **Num GC Cycles:** {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
