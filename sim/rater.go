// Pluggable configuration-scoring strategies (§4.5). ConfigRater picks the
// minimum value; CelfRater picks the maximum (primary, tiebreak) pair.
// Both follow the teacher's small-interface-plus-factory idiom
// (sim/scheduler.go's NewScheduler).

package sim

import (
	"fmt"
	"math"
)

// ConfigRater scores a flow's candidate configuration; H2S picks the
// configuration with the lowest value, breaking ties by lower ConfigId.
type ConfigRater interface {
	Rate(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) float64
}

// PathLength rates by hop count.
type PathLength struct{}

func (PathLength) Rate(cfg *Configuration, _ *Flow, _ *Graph, _ *UtilizationList) float64 {
	return float64(len(cfg.Path))
}

func linkUtilization(q EgressQueueId, u *UtilizationList) float64 {
	var reserved int64
	for _, r := range u.Reserved(q) {
		reserved += r.Len()
	}
	return float64(reserved) / float64(u.HyperCycle())
}

// BalancedNetworkUtilization rates by the sum over path of
// max(0, link_util + added - new_average) after a hypothetical addition.
type BalancedNetworkUtilization struct{}

func (BalancedNetworkUtilization) Rate(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) float64 {
	added := float64(TransmissionDelay(flow.FrameSizeBytes)) / float64(u.HyperCycle())
	pathSet := make(map[EgressQueueId]bool, len(cfg.Path))
	for _, q := range cfg.Path {
		pathSet[q] = true
	}

	var total float64
	for q := 0; q < u.QueueCount(); q++ {
		util := linkUtilization(EgressQueueId(q), u)
		if pathSet[EgressQueueId(q)] {
			util += added
		}
		total += util
	}
	newAverage := total / float64(u.QueueCount())

	var sum float64
	for _, q := range cfg.Path {
		util := linkUtilization(q, u) + added
		if d := util - newAverage; d > 0 {
			sum += d
		}
	}
	return sum
}

// EndToEndDelay rates by the sum of queueing delays over all frames from
// a read-only ASAP-style walk; +Inf if infeasible.
type EndToEndDelay struct{}

func (EndToEndDelay) Rate(cfg *Configuration, flow *Flow, _ *Graph, u *UtilizationList) float64 {
	trial := u.Copy()
	P := flow.PeriodUs
	frames := trial.HyperCycle() / P
	var total float64
	for i := int64(0); i < frames; i++ {
		release := i * P
		deadline := (i + 1) * P
		reqs, ok := trial.SearchTransmissionOpportunities(cfg, flow, release, deadline)
		if !ok {
			return math.Inf(1)
		}
		for _, r := range reqs {
			total += float64(r.Start - r.Arrival)
			if !trial.ReserveSlot(r, flow.ID, cfg.ID) {
				return math.Inf(1)
			}
		}
	}
	return total
}

// Bottleneck rates by the minimum remaining (free) capacity across the
// configuration's links.
type Bottleneck struct{}

func (Bottleneck) Rate(cfg *Configuration, _ *Flow, _ *Graph, u *UtilizationList) float64 {
	min := math.Inf(1)
	for _, q := range cfg.Path {
		var free int64
		for _, s := range u.Free(q) {
			free += s.Len()
		}
		if float64(free) < min {
			min = float64(free)
		}
	}
	return min
}

var validConfigRaters = map[int]bool{1: true, 2: true, 3: true, 4: true}

// IsValidConfigRaterIndex reports whether n names a recognized ConfigRater.
func IsValidConfigRaterIndex(n int) bool { return validConfigRaters[n] }

// NewConfigRater creates a ConfigRater by its CLI index
// (--configuration-rating N). Panics on an unrecognized index.
func NewConfigRater(n int) ConfigRater {
	switch n {
	case 1:
		return PathLength{}
	case 2:
		return BalancedNetworkUtilization{}
	case 3:
		return EndToEndDelay{}
	case 4:
		return Bottleneck{}
	default:
		panic(fmt.Sprintf("unknown config rater index %d", n))
	}
}

// celfK is the scaling constant in the CELF rating formulas. Its exact
// magnitude only matters relative to itself (all CELF raters use it
// identically), so an arbitrary well-scaled value is used.
const celfK = 1e6

// CelfRating is a (primary, tiebreak) pair; CELF pops the maximum.
type CelfRating struct {
	Primary  float64
	Tiebreak float64
}

// CelfRater is CELF's three-method lifecycle: Prepare rates a config the
// first time it is seen, Rate re-evaluates it against current state, and
// Pick is invoked once a placement actually commits (some raters use Pick
// to update internal bookkeeping).
type CelfRater interface {
	Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating
	Rate(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating
	Pick(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList)
}

func frameDelay(flow *Flow) float64 { return float64(TransmissionDelay(flow.FrameSizeBytes)) }

// LowID rates configs by K/flow.id, ties broken by lower ConfigId.
type LowID struct{}

func (LowID) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return LowID{}.Rate(cfg, flow, g, u)
}
func (LowID) Rate(cfg *Configuration, flow *Flow, _ *Graph, _ *UtilizationList) CelfRating {
	return CelfRating{Primary: celfK / float64(flow.ID), Tiebreak: -float64(cfg.ID)}
}
func (LowID) Pick(*Configuration, *Flow, *Graph, *UtilizationList) {}

// LowPeriodShortPaths rates by K/period + frame + 1/|path|.
type LowPeriodShortPaths struct{}

func (LowPeriodShortPaths) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return LowPeriodShortPaths{}.Rate(cfg, flow, g, u)
}
func (LowPeriodShortPaths) Rate(cfg *Configuration, flow *Flow, _ *Graph, _ *UtilizationList) CelfRating {
	primary := celfK/float64(flow.PeriodUs) + frameDelay(flow) + 1/float64(len(cfg.Path))
	return CelfRating{Primary: primary, Tiebreak: -float64(cfg.ID)}
}
func (LowPeriodShortPaths) Pick(*Configuration, *Flow, *Graph, *UtilizationList) {}

// LowPeriodLongPaths rates by K/period + |path|.
type LowPeriodLongPaths struct{}

func (LowPeriodLongPaths) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return LowPeriodLongPaths{}.Rate(cfg, flow, g, u)
}
func (LowPeriodLongPaths) Rate(cfg *Configuration, flow *Flow, _ *Graph, _ *UtilizationList) CelfRating {
	primary := celfK/float64(flow.PeriodUs) + float64(len(cfg.Path))
	return CelfRating{Primary: primary, Tiebreak: -float64(cfg.ID)}
}
func (LowPeriodLongPaths) Pick(*Configuration, *Flow, *Graph, *UtilizationList) {}

// LowPeriodConfigsFirst rates by K/period + frame.
type LowPeriodConfigsFirst struct{}

func (LowPeriodConfigsFirst) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return LowPeriodConfigsFirst{}.Rate(cfg, flow, g, u)
}
func (LowPeriodConfigsFirst) Rate(cfg *Configuration, flow *Flow, _ *Graph, _ *UtilizationList) CelfRating {
	primary := celfK/float64(flow.PeriodUs) + frameDelay(flow)
	return CelfRating{Primary: primary, Tiebreak: -float64(cfg.ID)}
}
func (LowPeriodConfigsFirst) Pick(*Configuration, *Flow, *Graph, *UtilizationList) {}

// LowPeriodLowUtilization rates by K/period + 1/path_util_sum, tracking
// its own local link-utilization accumulator (mutated only on Pick, so
// ratings reflect commitments made through this rater rather than the
// live UtilizationList, matching CELF's lazy-greedy re-evaluation).
type LowPeriodLowUtilization struct {
	accum map[EgressQueueId]float64
}

// NewLowPeriodLowUtilization returns a ready-to-use rater instance.
func NewLowPeriodLowUtilization() *LowPeriodLowUtilization {
	return &LowPeriodLowUtilization{accum: make(map[EgressQueueId]float64)}
}

func (r *LowPeriodLowUtilization) pathUtilSum(cfg *Configuration, flow *Flow, u *UtilizationList) float64 {
	added := frameDelay(flow) / float64(u.HyperCycle())
	var sum float64
	for _, q := range cfg.Path {
		sum += r.accum[q] + added
	}
	if sum <= 0 {
		return 1e-9
	}
	return sum
}

func (r *LowPeriodLowUtilization) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return r.Rate(cfg, flow, g, u)
}
func (r *LowPeriodLowUtilization) Rate(cfg *Configuration, flow *Flow, _ *Graph, u *UtilizationList) CelfRating {
	primary := celfK/float64(flow.PeriodUs) + 1/r.pathUtilSum(cfg, flow, u)
	return CelfRating{Primary: primary, Tiebreak: -float64(cfg.ID)}
}
func (r *LowPeriodLowUtilization) Pick(cfg *Configuration, flow *Flow, _ *Graph, u *UtilizationList) {
	added := frameDelay(flow) / float64(u.HyperCycle())
	for _, q := range cfg.Path {
		r.accum[q] += added
	}
}

// EndToEndDelayCelf rates by K/period + frame + slack_ms, where slack is
// the deadline margin found by a read-only ASAP-style walk;
// infeasible configs rate (-1, -1) so they always sort last.
type EndToEndDelayCelf struct{}

func (EndToEndDelayCelf) Prepare(cfg *Configuration, flow *Flow, g *Graph, u *UtilizationList) CelfRating {
	return EndToEndDelayCelf{}.Rate(cfg, flow, g, u)
}
func (EndToEndDelayCelf) Rate(cfg *Configuration, flow *Flow, _ *Graph, u *UtilizationList) CelfRating {
	trial := u.Copy()
	release, deadline := int64(0), flow.PeriodUs
	reqs, ok := trial.SearchTransmissionOpportunities(cfg, flow, release, deadline)
	if !ok {
		return CelfRating{Primary: -1, Tiebreak: -1}
	}
	last := reqs[len(reqs)-1]
	slackMs := float64(deadline-PropagationDelayUs-last.NextStart) / 1000.0
	primary := celfK/float64(flow.PeriodUs) + frameDelay(flow) + slackMs
	return CelfRating{Primary: primary, Tiebreak: -float64(cfg.ID)}
}
func (EndToEndDelayCelf) Pick(*Configuration, *Flow, *Graph, *UtilizationList) {}

var validCelfRaters = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}

// IsValidCelfRaterIndex reports whether n names a recognized CelfRater.
func IsValidCelfRaterIndex(n int) bool { return validCelfRaters[n] }

// NewCelfRater creates a CelfRater by its CLI index
// (--configuration-rating N, interpreted against CELF's own rater set
// when --algorithm CELF is selected). Panics on an unrecognized index.
func NewCelfRater(n int) CelfRater {
	switch n {
	case 1:
		return LowID{}
	case 2:
		return LowPeriodShortPaths{}
	case 3:
		return LowPeriodLongPaths{}
	case 4:
		return LowPeriodConfigsFirst{}
	case 5:
		return NewLowPeriodLowUtilization()
	case 6:
		return EndToEndDelayCelf{}
	default:
		panic(fmt.Sprintf("unknown celf rater index %d", n))
	}
}
