// CELF: lazy-greedy scheduling over configs across all flows (§4.4.2).
// The max-heap is a container/heap.Interface implementation, grounded on
// the teacher's sim/cluster/event_heap.go (EventHeap) idiom.

package sim

import "container/heap"

// CELF implements the lazy-greedy-over-configs scheduler.
type CELF struct {
	Rater CelfRater
	Place PlacementFunc
}

type celfEntry struct {
	cfg    *Configuration
	flow   *Flow
	rating CelfRating
	stale  bool // "updated_" in §4.4.2
}

type celfHeap []*celfEntry

func (h celfHeap) Len() int { return len(h) }
func (h celfHeap) Less(i, j int) bool {
	a, b := h[i].rating, h[j].rating
	if a.Primary != b.Primary {
		return a.Primary > b.Primary // max-heap: higher rating first
	}
	return a.Tiebreak > b.Tiebreak
}
func (h celfHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *celfHeap) Push(x interface{}) { *h = append(*h, x.(*celfEntry)) }
func (h *celfHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Solve implements Scheduler for CELF.
func (c *CELF) Solve(g *Graph, active []FlowId, required []FlowId, u *UtilizationList) []Admission {
	var admitted []Admission
	if len(active) > 0 {
		a, ok := admitActive(g, u, active, c.Place)
		if !ok {
			return nil
		}
		admitted = a
	}

	covered := make(map[FlowId]bool, len(required))
	h := &celfHeap{}
	heap.Init(h)
	for _, fid := range ascendingFlowIDs(required) {
		flow := g.Flow(fid)
		for _, cid := range flow.Configs {
			cfg := g.Configuration(cid)
			heap.Push(h, &celfEntry{cfg: cfg, flow: flow, rating: c.Rater.Prepare(cfg, flow, g, u)})
		}
	}

	for h.Len() > 0 {
		top := heap.Pop(h).(*celfEntry)
		if covered[top.flow.ID] {
			continue
		}
		if top.stale {
			if c.Place(u, top.cfg, top.flow) {
				c.Rater.Pick(top.cfg, top.flow, g, u)
				top.stale = false
				admitted = append(admitted, Admission{Flow: top.flow.ID, Config: top.cfg.ID})
				covered[top.flow.ID] = true
			}
			continue
		}

		fresh := c.Rater.Rate(top.cfg, top.flow, g, u)
		var nextBest CelfRating
		if h.Len() > 0 {
			nextBest = (*h)[0].rating
		}
		betterOrEqual := fresh.Primary > nextBest.Primary ||
			(fresh.Primary == nextBest.Primary && fresh.Tiebreak >= nextBest.Tiebreak)
		if h.Len() == 0 || betterOrEqual {
			if c.Place(u, top.cfg, top.flow) {
				c.Rater.Pick(top.cfg, top.flow, g, u)
				admitted = append(admitted, Admission{Flow: top.flow.ID, Config: top.cfg.ID})
				covered[top.flow.ID] = true
			}
			continue
		}
		top.rating = fresh
		top.stale = true
		heap.Push(h, top)
	}
	return admitted
}
