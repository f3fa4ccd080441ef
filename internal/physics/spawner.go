package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"go.uber.org/zap"
)

type pendingSpawn struct {
	index int
	due   float64
	done  func(engine.Spawned)
}

// SpawnFragment queues a fragment entity. The callback runs from a later
// Step, after the configured random delay, in shuffled order.
func (w *World) SpawnFragment(index int, done func(engine.Spawned)) {
	delay := 0.0
	if w.spawnDelay > 0 {
		delay = w.rng.Float64() * w.spawnDelay
	}
	w.pending = append(w.pending, pendingSpawn{index: index, due: w.time + delay, done: done})
}

// PendingSpawns is the number of spawn requests not yet delivered.
func (w *World) PendingSpawns() int { return len(w.pending) }

func (w *World) pumpSpawns() {
	if len(w.pending) == 0 {
		return
	}
	var ready, waiting []pendingSpawn
	for _, p := range w.pending {
		if p.due <= w.time {
			ready = append(ready, p)
		} else {
			waiting = append(waiting, p)
		}
	}
	w.pending = waiting
	w.rng.Shuffle(len(ready), func(i, j int) { ready[i], ready[j] = ready[j], ready[i] })

	for _, p := range ready {
		spec := w.template(p.index)
		id := w.AddBody(spec)
		w.log.Debug("fragment spawned", zap.Int("index", p.index), zap.Int32("body", int32(id)))
		p.done(engine.Spawned{Index: p.index, Body: id, FlyRef: mgl64.QuatIdent()})
	}
}

// Despawn removes a body as if its entity vanished.
func (w *World) Despawn(id engine.BodyID) {
	w.DestroyBody(id)
}
