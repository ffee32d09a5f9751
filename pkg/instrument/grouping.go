package instrument

import (
	"cmp"
	"slices"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
)

// Sensation is what one target currently hears.
type Sensation struct {
	Name string
	// Period is the averaged instant period, in samples.
	Period       float64
	PeriodFactor float64
	Snapshot     lifecycle.Snapshot
}

// Sensations returns one Sensation per target, in target order.
func (a *Array) Sensations() []Sensation {
	out := make([]Sensation, len(a.sensors))
	for i, s := range a.sensors {
		out[i] = Sensation{
			Name:         a.targets[i].Name,
			Period:       s.AvgPeriod(),
			PeriodFactor: s.PeriodFactor,
			Snapshot:     s.Snapshot(),
		}
	}
	return out
}

// Consonant reports whether other sounds apart from the given harmonic of
// s: their periods differ by more than one sensor bandwidth, scaled by
// factor. Sensations that are not consonant are heard as one pitch.
func (s Sensation) Consonant(other Sensation, factor float64, harmonic int) bool {
	p := s.Period * float64(harmonic)
	ratio := max(p, other.Period) / min(p, other.Period)
	return ratio > (1+1/s.PeriodFactor)*factor
}

func byPeriod(sensations []Sensation) []Sensation {
	sorted := slices.Clone(sensations)
	slices.SortStableFunc(sorted, func(a, b Sensation) int {
		return cmp.Compare(b.Period, a.Period)
	})
	return sorted
}

// ByUnison groups sensations hearing the same pitch, lowest pitch first.
// A new group starts wherever a sensation is consonant with the one below it.
func ByUnison(sensations []Sensation, factor float64) [][]Sensation {
	var groups [][]Sensation
	var group []Sensation
	for i, s := range byPeriod(sensations) {
		if i > 0 && group[len(group)-1].Consonant(s, factor, 1) {
			groups = append(groups, group)
			group = nil
		}
		group = append(group, s)
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}

// Cluster is a run of neighbouring sensations. Members of a Tight cluster
// sit closer together than tension times their bandwidth; the rest are
// collected in loose clusters between them.
type Cluster struct {
	Tight   bool
	Members []Sensation
}

// ByCluster splits sensations, lowest pitch first, into tight and loose
// clusters.
func ByCluster(sensations []Sensation, tension float64) []Cluster {
	var out []Cluster
	sorted := byPeriod(sensations)
	for i, s := range sorted {
		near := i > 0 && sorted[i-1].Period-s.Period < s.Period/s.PeriodFactor*tension
		switch {
		case near && out[len(out)-1].Tight:
			last := &out[len(out)-1]
			last.Members = append(last.Members, s)
		case near:
			last := &out[len(out)-1]
			prev := last.Members[len(last.Members)-1]
			last.Members = last.Members[:len(last.Members)-1]
			if len(last.Members) == 0 {
				out = out[:len(out)-1]
			}
			out = append(out, Cluster{Tight: true, Members: []Sensation{prev, s}})
		case len(out) > 0 && !out[len(out)-1].Tight:
			last := &out[len(out)-1]
			last.Members = append(last.Members, s)
		default:
			out = append(out, Cluster{Members: []Sensation{s}})
		}
	}
	return out
}
