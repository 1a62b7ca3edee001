package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/rotation"
)

// fixedSource returns the same fraction of every uniform range.
type fixedSource struct{ u float64 }

func (f fixedSource) Uniform(min, max float64) (float64, error) { return min + f.u*(max-min), nil }
func (f fixedSource) Normal(mean, _ float64) (float64, error) { return mean, nil }

// fakeEnv is a scripted world for driving a single agent.
type fakeEnv struct {
	b *Behavior

	enemies    []*components.Agent
	visible    bool
	food       *components.Food
	canDrop    bool
	dropped    float64
	pheromones []*components.Pheromone
	ants       []*components.Agent
	tables     int
}

func (e *fakeEnv) VisibleEnemies(a *components.Agent) []*components.Agent {
	var out []*components.Agent
	for _, o := range e.enemies {
		if IsEnemy(a, o) {
			out = append(out, o)
		}
	}
	return out
}

func (e *fakeEnv) IsVisibleFromEnemies(*components.Agent) bool { return e.visible }

func (e *fakeEnv) SpecificBehavior(a *components.Agent, dt float64) error {
	if a.Species == components.SpeciesWorker {
		return e.b.Forage(a, e, dt)
	}
	return e.b.SeekEnemies(a, e, dt)
}

func (e *fakeEnv) AfterMove(a *components.Agent, _ float64) error {
	if a.IsAnt() {
		return e.b.SpreadPheromones(a, e)
	}
	return nil
}

func (e *fakeEnv) RotationTable(*components.Agent) (rotation.Table, error) {
	e.tables++
	return rotation.Default(), nil
}

func (e *fakeEnv) PheromoneQuantities(_ geom.Position, _ float64, angles []float64) []float64 {
	return make([]float64, len(angles))
}

func (e *fakeEnv) AddPheromone(p *components.Pheromone) error {
	e.pheromones = append(e.pheromones, p)
	return nil
}

func (e *fakeEnv) ClosestFood(*components.Agent) *components.Food { return e.food }

func (e *fakeEnv) DropFood(w *components.Agent) (bool, error) {
	if e.canDrop {
		e.dropped += w.FoodQuantity
	}
	return e.canDrop, nil
}

func (e *fakeEnv) AddAnt(a *components.Agent) error {
	e.ants = append(e.ants, a)
	return nil
}

type countingRecorder struct {
	hits      int
	damage    int
	taken     float64
	delivered float64
}

func (r *countingRecorder) RecordHit(_, _ *components.Agent, d int) {
	r.hits++
	r.damage += d
}
func (r *countingRecorder) RecordFoodTaken(_ *components.Agent, q float64) { r.taken += q }
func (r *countingRecorder) RecordFoodDelivered(_ *components.Agent, q float64) { r.delivered += q }

func testRules() Rules {
	return Rules{
		Worker:                 Policy{HitPoints: 10, Lifespan: 100, Speed: 10, MinStrength: 1, MaxStrength: 3, MaxAttackDuration: 2},
		Soldier:                Policy{HitPoints: 20, Lifespan: 100, Speed: 5, MinStrength: 4, MaxStrength: 8, MaxAttackDuration: 3},
		Termite:                Policy{HitPoints: 15, Lifespan: 100, Speed: 4, MinStrength: 2, MaxStrength: 6, MaxAttackDuration: 3},
		RotationInterval:       1000,
		LifespanDecreaseFactor: 1,
		MaxFood:                5,
		PheromoneDensity:       0,
		PheromoneEnergy:        1,
		SpawnDelay:             4,
		AntBias:                rotation.PheromoneBias{Alpha: 1, Beta: 1, Q0: 0},
	}
}

func newTestBehavior(t *testing.T, u float64) (*Behavior, *fakeEnv) {
	t.Helper()
	torus, err := geom.NewTorus(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBehavior(testRules(), torus, fixedSource{u})
	return b, &fakeEnv{b: b}
}

func newTestAgent(t *testing.T, b *Behavior, s components.Species, x, y float64, colony components.ColonyID) *components.Agent {
	t.Helper()
	a, err := b.NewAgent(s, geom.Position{X: x, Y: y}, colony)
	if err != nil {
		t.Fatal(err)
	}
	a.Heading = 0
	return a
}

func TestNewAgent(t *testing.T) {
	b, _ := newTestBehavior(t, 0.25)

	w, err := b.NewAgent(components.SpeciesWorker, geom.Position{X: 3, Y: 4}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w.Heading-math.Pi/2) > 1e-12 {
		t.Errorf("heading = %v, want Pi/2", w.Heading)
	}
	if w.HitPoints != 10 || w.Lifespan != 100 || w.Colony != 7 {
		t.Errorf("unexpected worker %v", w)
	}
	if w.LastPosition != w.Position {
		t.Errorf("trail should start at the spawn point")
	}
	if _, ok := w.RotationModel.(rotation.PheromoneBias); !ok {
		t.Errorf("ant rotation model = %T, want PheromoneBias", w.RotationModel)
	}

	term, err := b.NewAgent(components.SpeciesTermite, geom.Position{}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if term.Colony != 0 {
		t.Errorf("termite colony = %d, want 0", term.Colony)
	}
	if _, ok := term.RotationModel.(rotation.Inertial); !ok {
		t.Errorf("termite rotation model = %T, want Inertial", term.RotationModel)
	}
}

func TestUpdateDeadAgentUntouched(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesTermite, 10, 10, 0)
	a.HitPoints = 0
	before := *a

	if err := b.Update(a, env, 1); err != nil {
		t.Fatal(err)
	}
	if *a != before {
		t.Errorf("dead agent changed: %v -> %v", before, *a)
	}
}

func TestUpdateAgesAndStopsOnDeath(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesTermite, 10, 10, 0)
	a.Lifespan = 0.5

	if err := b.Update(a, env, 1); err != nil {
		t.Fatal(err)
	}
	if !a.IsDead() {
		t.Fatal("agent should have died of old age")
	}
	if a.Position != (geom.Position{X: 10, Y: 10}) {
		t.Errorf("dying agent moved to %v", a.Position)
	}
}

func TestUpdateAttackTimeoutEscapes(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesSoldier, 10, 10, 1)
	a.State = components.StateAttack
	a.AttackDuration = 3.5

	if err := b.Update(a, env, 0.1); err != nil {
		t.Fatal(err)
	}
	if a.State != components.StateEscaping {
		t.Errorf("state = %v, want escaping", a.State)
	}
	if a.AttackDuration != 0 {
		t.Errorf("attack duration = %v, want 0", a.AttackDuration)
	}
	if a.Position != (geom.Position{X: 10, Y: 10}) {
		t.Errorf("agent moved while breaking off: %v", a.Position)
	}
}

func TestFightHitsNearestEnemy(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	rec := &countingRecorder{}
	b.SetRecorder(rec)

	soldier := newTestAgent(t, b, components.SpeciesSoldier, 10, 10, 1)
	far := newTestAgent(t, b, components.SpeciesSoldier, 20, 10, 2)
	near := newTestAgent(t, b, components.SpeciesTermite, 13, 10, 0)
	friend := newTestAgent(t, b, components.SpeciesWorker, 11, 10, 1)
	env.enemies = []*components.Agent{far, near, friend}

	if err := b.Fight(soldier, env, 0.1); err != nil {
		t.Fatal(err)
	}
	// Soldier strength [4, 8] at u=0.5 rounds to 6.
	if near.HitPoints != 15-6 {
		t.Errorf("near enemy hp = %d, want %d", near.HitPoints, 15-6)
	}
	if far.HitPoints != 20 || friend.HitPoints != 10 {
		t.Error("only the nearest enemy should be hit")
	}
	if near.State != components.StateAttack || soldier.State != components.StateAttack {
		t.Errorf("states = %v/%v, want attack/attack", soldier.State, near.State)
	}
	if math.Abs(soldier.AttackDuration-0.1) > 1e-12 {
		t.Errorf("attack duration = %v, want 0.1", soldier.AttackDuration)
	}
	if rec.hits != 1 || rec.damage != 6 {
		t.Errorf("recorded %d hits for %d damage, want 1 for 6", rec.hits, rec.damage)
	}
}

func TestFightWithoutEnemyEscapes(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesTermite, 10, 10, 0)
	a.State = components.StateAttack
	a.AttackDuration = 1

	if err := b.Fight(a, env, 0.1); err != nil {
		t.Fatal(err)
	}
	if a.State != components.StateEscaping || a.AttackDuration != 0 {
		t.Errorf("state %v duration %v, want escaping 0", a.State, a.AttackDuration)
	}

	idle := newTestAgent(t, b, components.SpeciesTermite, 10, 10, 0)
	if err := b.Fight(idle, env, 0.1); err != nil {
		t.Fatal(err)
	}
	if idle.State != components.StateIdle {
		t.Errorf("idle agent state = %v, want idle", idle.State)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name    string
		visible bool
		want    components.State
	}{
		{"still seen", true, components.StateEscaping},
		{"out of sight", false, components.StateIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, env := newTestBehavior(t, 0.5)
			env.visible = tt.visible
			a := newTestAgent(t, b, components.SpeciesTermite, 10, 10, 0)
			a.State = components.StateEscaping

			if err := b.Update(a, env, 0.5); err != nil {
				t.Fatal(err)
			}
			if a.State != tt.want {
				t.Errorf("state = %v, want %v", a.State, tt.want)
			}
			if math.Abs(a.Position.X-12) > 1e-9 {
				t.Errorf("x = %v, want 12", a.Position.X)
			}
		})
	}
}

func TestMoveWrapsAroundEdge(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesTermite, 98, 50, 0)

	if err := b.Move(a, env, 1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.Position.X-2) > 1e-9 || math.Abs(a.Position.Y-50) > 1e-9 {
		t.Errorf("position = %v, want (2, 50)", a.Position)
	}
}

func TestMoveSamplesOncePerInterval(t *testing.T) {
	b, env := newTestBehavior(t, 0.999)
	b.Rules.RotationInterval = 0.1
	a := newTestAgent(t, b, components.SpeciesTermite, 50, 50, 0)

	if err := b.Move(a, env, 0.25); err != nil {
		t.Fatal(err)
	}
	if env.tables != 2 {
		t.Errorf("sampled %d times, want 2", env.tables)
	}
	if math.Abs(a.RotationDelay-0.05) > 1e-9 {
		t.Errorf("rotation delay = %v, want 0.05", a.RotationDelay)
	}
	// u=0.999 lands in the +25 degree bucket.
	want := 50 * math.Pi / 180
	if math.Abs(a.Heading-want) > 1e-9 {
		t.Errorf("heading = %v, want %v", a.Heading, want)
	}
}

func TestForage(t *testing.T) {
	tests := []struct {
		name        string
		carrying    float64
		food        float64
		hasFood     bool
		canDrop     bool
		wantCarry   float64
		wantFood    float64
		wantHeading float64
	}{
		{"pick up", 0, 10, true, false, 5, 5, math.Pi},
		{"pick up the rest", 0, 2, true, false, 2, 0, math.Pi},
		{"nothing around", 0, 0, false, false, 0, 0, 0},
		{"carrying ignores food", 3, 10, true, false, 3, 10, 0},
		{"deliver", 3, 0, false, true, 0, 0, math.Pi},
		{"pick up and deliver", 0, 10, true, true, 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, env := newTestBehavior(t, 0.5)
			rec := &countingRecorder{}
			b.SetRecorder(rec)
			w := newTestAgent(t, b, components.SpeciesWorker, 50, 50, 1)
			w.FoodQuantity = tt.carrying
			if tt.hasFood {
				env.food = components.NewFood(geom.Position{X: 55, Y: 50}, tt.food)
			}
			env.canDrop = tt.canDrop

			if err := b.Update(w, env, 0.1); err != nil {
				t.Fatal(err)
			}
			if w.FoodQuantity != tt.wantCarry {
				t.Errorf("carrying %v, want %v", w.FoodQuantity, tt.wantCarry)
			}
			if env.food != nil && env.food.Quantity() != tt.wantFood {
				t.Errorf("food left %v, want %v", env.food.Quantity(), tt.wantFood)
			}
			if math.Abs(w.Heading-tt.wantHeading) > 1e-12 {
				t.Errorf("heading = %v, want %v", w.Heading, tt.wantHeading)
			}
			if rec.delivered != env.dropped {
				t.Errorf("recorded %v delivered, environment got %v", rec.delivered, env.dropped)
			}
		})
	}
}

func TestSeekEnemiesHoldsPositionInAttack(t *testing.T) {
	b, env := newTestBehavior(t, 0.5)
	a := newTestAgent(t, b, components.SpeciesSoldier, 10, 10, 1)
	enemy := newTestAgent(t, b, components.SpeciesTermite, 12, 10, 0)
	env.enemies = []*components.Agent{enemy}
	a.State = components.StateAttack

	if err := b.SeekEnemies(a, env, 0.1); err != nil {
		t.Fatal(err)
	}
	if a.Position != (geom.Position{X: 10, Y: 10}) {
		t.Errorf("attacking soldier moved to %v", a.Position)
	}
	if enemy.HitPoints >= 15 {
		t.Errorf("enemy hp = %d, want a hit", enemy.HitPoints)
	}
}

func TestSpreadPheromones(t *testing.T) {
	tests := []struct {
		name    string
		last    geom.Position
		pos     geom.Position
		density float64
		want    []float64 // x of each marker, y is 0
	}{
		{"straight", geom.Position{X: 0}, geom.Position{X: 10}, 0.5, []float64{2, 4, 6, 8, 10}},
		{"across the seam", geom.Position{X: 98}, geom.Position{X: 2}, 1, []float64{99, 0, 1, 2}},
		{"too short", geom.Position{X: 0}, geom.Position{X: 0.4}, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, env := newTestBehavior(t, 0.5)
			b.Rules.PheromoneDensity = tt.density
			a := newTestAgent(t, b, components.SpeciesWorker, tt.pos.X, tt.pos.Y, 1)
			a.LastPosition = tt.last

			if err := b.SpreadPheromones(a, env); err != nil {
				t.Fatal(err)
			}
			if len(env.pheromones) != len(tt.want) {
				t.Fatalf("laid %d markers, want %d", len(env.pheromones), len(tt.want))
			}
			for i, p := range env.pheromones {
				if math.Abs(p.Position.X-tt.want[i]) > 1e-9 || p.Position.Y != 0 {
					t.Errorf("marker %d at %v, want (%v, 0)", i, p.Position, tt.want[i])
				}
				if p.Quantity != 1 {
					t.Errorf("marker %d quantity %v, want 1", i, p.Quantity)
				}
			}
			if len(tt.want) == 0 && a.LastPosition != tt.last {
				t.Errorf("trail end moved without laying markers")
			}
		})
	}
}

func TestSpawnAnts(t *testing.T) {
	tests := []struct {
		name       string
		prob       float64
		dt         float64
		wantCount  int
		wantWorker bool
	}{
		{"workers", 0.8, 9, 2, true},
		{"soldiers", 0.2, 9, 2, false},
		{"boundary is a worker", 0.5, 4, 1, true},
		{"not yet", 0.5, 3.9, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, env := newTestBehavior(t, 0.5)
			h, err := components.NewAnthill(3, geom.Position{X: 40, Y: 60}, tt.prob)
			if err != nil {
				t.Fatal(err)
			}
			if err := b.SpawnAnts(h, env, tt.dt); err != nil {
				t.Fatal(err)
			}
			if len(env.ants) != tt.wantCount {
				t.Fatalf("spawned %d ants, want %d", len(env.ants), tt.wantCount)
			}
			for _, a := range env.ants {
				if (a.Species == components.SpeciesWorker) != tt.wantWorker {
					t.Errorf("spawned %v", a.Species)
				}
				if a.Colony != 3 || a.Position != h.Position {
					t.Errorf("ant %v not born at its anthill", a)
				}
			}
		})
	}
}

func TestIsEnemy(t *testing.T) {
	b, _ := newTestBehavior(t, 0.5)
	w1 := newTestAgent(t, b, components.SpeciesWorker, 0, 0, 1)
	s1 := newTestAgent(t, b, components.SpeciesSoldier, 0, 0, 1)
	s2 := newTestAgent(t, b, components.SpeciesSoldier, 0, 0, 2)
	t1 := newTestAgent(t, b, components.SpeciesTermite, 0, 0, 0)
	t2 := newTestAgent(t, b, components.SpeciesTermite, 0, 0, 0)
	dead := newTestAgent(t, b, components.SpeciesSoldier, 0, 0, 2)
	dead.HitPoints = 0

	tests := []struct {
		name string
		a, o *components.Agent
		want bool
	}{
		{"same colony", w1, s1, false},
		{"rival colonies", w1, s2, true},
		{"ant and termite", s1, t1, true},
		{"termites", t1, t2, false},
		{"dead rival", w1, dead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEnemy(tt.a, tt.o); got != tt.want {
				t.Errorf("IsEnemy = %v, want %v", got, tt.want)
			}
			if got := IsEnemy(tt.o, tt.a); got != tt.want {
				t.Errorf("IsEnemy reversed = %v, want %v", got, tt.want)
			}
		})
	}
}
