package analysis

import "github.com/san-kum/shatterblade/internal/metrics"

// Segment is a stretch of a run spent in one mode. Mode is empty while the
// weapon is not held.
type Segment struct {
	Mode       string
	Start, End float64
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// Timeline splits samples into consecutive segments of equal mode.
func Timeline(samples []metrics.Sample) []Segment {
	var out []Segment
	for _, s := range samples {
		if n := len(out); n > 0 && out[n-1].Mode == s.Mode {
			out[n-1].End = s.Time
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].End = s.Time
		}
		out = append(out, Segment{Mode: s.Mode, Start: s.Time, End: s.Time})
	}
	return out
}

// SettleTime returns the time of the first sample after which every
// fragment stayed locked with residual velocity below tol, or -1 if the
// run never settled.
func SettleTime(samples []metrics.Sample, total int, tol float64) float64 {
	at := -1.0
	for _, s := range samples {
		if s.Locked == total && s.Residual < tol {
			if at < 0 {
				at = s.Time
			}
			continue
		}
		at = -1
	}
	return at
}
