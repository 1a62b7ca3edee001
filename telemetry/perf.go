package telemetry

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Phase identifies one step of a world tick.
type Phase int

// Phases in tick order.
const (
	PhaseFoodGenerator Phase = iota
	PhasePheromones
	PhaseAnthills
	PhaseAgents
	PhaseFood
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	"food_generator", "pheromones", "anthills", "agents", "food", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times world ticks and keeps the most recent ones in a ring.
type PerfCollector struct {
	ring   []tickTiming
	next   int
	filled bool

	cur     tickTiming
	tickAt  time.Time
	phaseAt time.Time
	open    Phase // -1 between ticks

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over the last size ticks.
// A non-positive size falls back to 60.
func NewPerfCollector(size int) *PerfCollector {
	if size < 1 {
		size = 60
	}
	return &PerfCollector{ring: make([]tickTiming, size), open: -1, now: time.Now}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickTiming{}
	p.tickAt = p.now()
	p.open = -1
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	t := p.now()
	p.closePhase(t)
	if ph >= 0 && ph < numPhases {
		p.open, p.phaseAt = ph, t
	}
}

// EndTick closes the running phase and stores the tick.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.cur.total = t.Sub(p.tickAt)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.next == 0 {
		p.filled = true
	}
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.open >= 0 {
		p.cur.phases[p.open] += t.Sub(p.phaseAt)
	}
	p.open = -1
}

func (p *PerfCollector) timings() []tickTiming {
	if p.filled {
		return p.ring
	}
	return p.ring[:p.next]
}

// PerfStats summarizes the ticks held by a PerfCollector. Phase arrays are
// indexed by Phase.
type PerfStats struct {
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of the average tick, in percent
}

// Stats summarizes the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	ticks := p.timings()
	if len(ticks) == 0 {
		return s
	}

	var total time.Duration
	var sums [numPhases]time.Duration
	for i, tt := range ticks {
		total += tt.total
		if i == 0 || tt.total < s.MinTick {
			s.MinTick = tt.total
		}
		s.MaxTick = max(s.MaxTick, tt.total)
		for ph, d := range tt.phases {
			sums[ph] += d
		}
	}

	n := time.Duration(len(ticks))
	s.AvgTick = total / n
	if s.AvgTick <= 0 {
		return s
	}
	s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	for ph, sum := range sums {
		s.PhaseAvg[ph] = sum / n
		s.PhasePct[ph] = 100 * float64(s.PhaseAvg[ph]) / float64(s.AvgTick)
	}
	return s
}

func (s PerfStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", math.Round(s.TicksPerSecond)),
	}
	for ph := range numPhases {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", math.Round(s.PhasePct[ph]*10)/10))
	}
	return attrs
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.attrs()...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd        int64   `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	MinTickUS        int64   `csv:"min_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	FoodGeneratorPct float64 `csv:"food_generator_pct"`
	PheromonesPct    float64 `csv:"pheromones_pct"`
	AnthillsPct      float64 `csv:"anthills_pct"`
	AgentsPct        float64 `csv:"agents_pct"`
	FoodPct          float64 `csv:"food_pct"`
	TelemetryPct     float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTick.Microseconds(),
		MinTickUS:        s.MinTick.Microseconds(),
		MaxTickUS:        s.MaxTick.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		FoodGeneratorPct: pct[PhaseFoodGenerator],
		PheromonesPct:    pct[PhasePheromones],
		AnthillsPct:      pct[PhaseAnthills],
		AgentsPct:        pct[PhaseAgents],
		FoodPct:          pct[PhaseFood],
		TelemetryPct:     pct[PhaseTelemetry],
	}
}
