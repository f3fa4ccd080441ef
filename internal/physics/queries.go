package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
)

func (w *World) hit(b *body, point mgl64.Vec3, distance float64) engine.Hit {
	return engine.Hit{
		Body:      b.id,
		Root:      b.root,
		Kind:      b.kind,
		Point:     point,
		Distance:  distance,
		Alive:     w.rootAlive(b),
		Kinematic: b.kinematic,
		Held:      b.held,
		Mass:      b.effectiveMass(),
		Radius:    b.radius,
	}
}

func (w *World) rootAlive(b *body) bool {
	if r := w.bodies[b.root]; r != nil {
		return r.alive()
	}
	return b.alive()
}

func (w *World) queryable(b *body) bool {
	return b.collision && b.radius > 0
}

func (w *World) OverlapSphere(center mgl64.Vec3, radius float64) []engine.Hit {
	var hits []engine.Hit
	for _, id := range w.order {
		b := w.bodies[id]
		if !w.queryable(b) {
			continue
		}
		d := b.pose.Position.Sub(center)
		dist := d.Len()
		if dist > radius+b.radius {
			continue
		}
		point := b.pose.Position
		if dist > 1e-9 {
			point = b.pose.Position.Sub(d.Mul(math.Min(b.radius, dist) / dist))
		}
		hits = append(hits, w.hit(b, point, dist))
	}
	sortHits(hits)
	return hits
}

// SphereCast sweeps a sphere of radius along dir and reports every body it
// touches, nearest first. Distance is measured along the sweep.
func (w *World) SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, distance float64) []engine.Hit {
	if dir.LenSqr() < 1e-12 {
		return nil
	}
	dir = dir.Normalize()
	var hits []engine.Hit
	for _, id := range w.order {
		b := w.bodies[id]
		if !w.queryable(b) {
			continue
		}
		rel := b.pose.Position.Sub(origin)
		along := rel.Dot(dir)
		reach := radius + b.radius
		if along < -reach || along > distance+reach {
			continue
		}
		closest := origin.Add(dir.Mul(mgl64.Clamp(along, 0, distance)))
		gap := b.pose.Position.Sub(closest)
		if gap.Len() > reach {
			continue
		}
		// first contact along the sweep
		perp := rel.Sub(dir.Mul(along)).Len()
		t := along - math.Sqrt(math.Max(reach*reach-perp*perp, 0))
		if t < 0 {
			t = 0
		}
		center := origin.Add(dir.Mul(t))
		toBody := b.pose.Position.Sub(center)
		point := b.pose.Position
		if l := toBody.Len(); l > 1e-9 {
			point = b.pose.Position.Sub(toBody.Mul(math.Min(b.radius, l) / l))
		}
		hits = append(hits, w.hit(b, point, t))
	}
	sortHits(hits)
	return hits
}

func (w *World) Raycast(origin, dir mgl64.Vec3, distance float64) []engine.Hit {
	return w.SphereCast(origin, 0, dir, distance)
}

func sortHits(hits []engine.Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
}
