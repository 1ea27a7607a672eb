// Pluggable flow-ordering strategies feeding the heuristic schedulers
// (§4.5). Grounded on the teacher's InstanceScheduler pattern: a small
// interface, a handful of struct{} implementations, and a NewX factory
// that panics on an unrecognized name.

package sim

import (
	"fmt"
	"sort"
)

// FlowSorter orders flows into a priority sequence; index 0 is popped
// first (highest priority). Order must sort in-place with sort.SliceStable
// for determinism (§9).
type FlowSorter interface {
	Order(flows []*Flow, g *Graph)
}

func trafficRate(f *Flow) float64 {
	return float64(f.FrameSizeBytes) / float64(f.PeriodUs)
}

// HighestTrafficFirst orders by larger bytes/period, tie: smaller id.
type HighestTrafficFirst struct{}

func (HighestTrafficFirst) Order(flows []*Flow, _ *Graph) {
	sort.SliceStable(flows, func(i, j int) bool {
		ri, rj := trafficRate(flows[i]), trafficRate(flows[j])
		if ri != rj {
			return ri > rj
		}
		return flows[i].ID < flows[j].ID
	})
}

// LowestTrafficFirst orders by smaller bytes/period, tie: smaller id.
type LowestTrafficFirst struct{}

func (LowestTrafficFirst) Order(flows []*Flow, _ *Graph) {
	sort.SliceStable(flows, func(i, j int) bool {
		ri, rj := trafficRate(flows[i]), trafficRate(flows[j])
		if ri != rj {
			return ri < rj
		}
		return flows[i].ID < flows[j].ID
	})
}

// LowestIdFirst orders by smaller FlowId.
type LowestIdFirst struct{}

func (LowestIdFirst) Order(flows []*Flow, _ *Graph) {
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].ID < flows[j].ID })
}

// SourceNodeSorting orders by fewer flows sharing source, then smaller
// destination, then higher bandwidth, then smaller id.
type SourceNodeSorting struct{}

func (SourceNodeSorting) Order(flows []*Flow, _ *Graph) {
	shareCount := make(map[NetworkNodeId]int, len(flows))
	for _, f := range flows {
		shareCount[f.Source]++
	}
	sort.SliceStable(flows, func(i, j int) bool {
		a, b := flows[i], flows[j]
		ca, cb := shareCount[a.Source], shareCount[b.Source]
		if ca != cb {
			return ca < cb
		}
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		ra, rb := trafficRate(a), trafficRate(b)
		if ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})
}

// LowPeriodFirst orders by smaller period, then larger frame, then
// smaller id.
type LowPeriodFirst struct{}

func (LowPeriodFirst) Order(flows []*Flow, _ *Graph) {
	sort.SliceStable(flows, func(i, j int) bool {
		a, b := flows[i], flows[j]
		if a.PeriodUs != b.PeriodUs {
			return a.PeriodUs < b.PeriodUs
		}
		if a.FrameSizeBytes != b.FrameSizeBytes {
			return a.FrameSizeBytes > b.FrameSizeBytes
		}
		return a.ID < b.ID
	})
}

var validFlowSorters = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}

// IsValidFlowSorterIndex reports whether n names a recognized FlowSorter
// (the CLI's --flow-sorting N convention, §6).
func IsValidFlowSorterIndex(n int) bool { return validFlowSorters[n] }

// NewFlowSorter creates a FlowSorter by its CLI index. Panics on an
// unrecognized index (§9 "avoid deep hierarchies").
func NewFlowSorter(n int) FlowSorter {
	switch n {
	case 1:
		return HighestTrafficFirst{}
	case 2:
		return LowestTrafficFirst{}
	case 3:
		return LowestIdFirst{}
	case 4:
		return SourceNodeSorting{}
	case 5:
		return LowPeriodFirst{}
	default:
		panic(fmt.Sprintf("unknown flow sorter index %d", n))
	}
}
