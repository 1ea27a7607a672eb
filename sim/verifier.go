// ScheduleVerifier: an independent, read-only re-simulator that proves a
// finalized UtilizationList obeys every structural and temporal
// invariant (§4.7). It never mutates graph or u.

package sim

import (
	"fmt"
	"sort"
)

// ValidationError reports one invariant violation. Queue and Flow are
// set to -1 when the violation is not scoped to that dimension.
type ValidationError struct {
	Queue  EgressQueueId
	Flow   FlowId
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Queue >= 0 && e.Flow >= 0:
		return fmt.Sprintf("schedule invalid at %s for %s: %s", e.Queue, e.Flow, e.Reason)
	case e.Queue >= 0:
		return fmt.Sprintf("schedule invalid at %s: %s", e.Queue, e.Reason)
	case e.Flow >= 0:
		return fmt.Sprintf("schedule invalid for %s: %s", e.Flow, e.Reason)
	default:
		return fmt.Sprintf("schedule invalid: %s", e.Reason)
	}
}

// VerifySchedule runs every check in §4.7 against u and g, returning the
// first violation found, or nil if the schedule is consistent.
func VerifySchedule(g *Graph, u *UtilizationList) error {
	for q := 0; q < u.QueueCount(); q++ {
		qid := EgressQueueId(q)
		if err := verifyFreeList(qid, u.Free(qid), u.HyperCycle()); err != nil {
			return err
		}
		if err := verifyReservedList(qid, u.Reserved(qid), u.HyperCycle()); err != nil {
			return err
		}
		if err := verifyComplementarity(qid, u.Free(qid), u.Reserved(qid), u.HyperCycle()); err != nil {
			return err
		}
	}
	for _, flow := range g.Flows() {
		if err := verifyFlowStrands(g, u, flow); err != nil {
			return err
		}
	}
	return nil
}

func verifyFreeList(q EgressQueueId, free []FreeSlot, H int64) error {
	for i, s := range free {
		if s.Start < 0 || s.Last >= H || s.Start > s.Last {
			return &ValidationError{Queue: q, Flow: -1, Reason: fmt.Sprintf("free slot [%d,%d] out of bounds or empty", s.Start, s.Last)}
		}
		if i > 0 && free[i-1].Last >= s.Start {
			return &ValidationError{Queue: q, Flow: -1, Reason: "free list not sorted or overlapping"}
		}
		if i > 0 && free[i-1].Last+1 == s.Start {
			return &ValidationError{Queue: q, Flow: -1, Reason: "adjacent free slots were not merged"}
		}
	}
	return nil
}

func verifyReservedList(q EgressQueueId, reserved []ReservedSlot, H int64) error {
	sorted := append([]ReservedSlot(nil), reserved...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i, r := range sorted {
		if r.Start < 0 || r.NextStart > H || r.Start >= r.NextStart {
			return &ValidationError{Queue: q, Flow: r.Flow, Reason: fmt.Sprintf("reserved slot [%d,%d) out of bounds or empty", r.Start, r.NextStart)}
		}
		if i > 0 && sorted[i-1].NextStart > r.Start {
			return &ValidationError{Queue: q, Flow: r.Flow, Reason: "reserved slots overlap"}
		}
	}
	return nil
}

// verifyComplementarity checks free[q] ∪ reserved[q] tiles [0,H) exactly.
func verifyComplementarity(q EgressQueueId, free []FreeSlot, reserved []ReservedSlot, H int64) error {
	type span struct{ start, end int64 } // end exclusive
	spans := make([]span, 0, len(free)+len(reserved))
	for _, s := range free {
		spans = append(spans, span{s.Start, s.Last + 1})
	}
	for _, r := range reserved {
		spans = append(spans, span{r.Start, r.NextStart})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var cursor int64
	for _, sp := range spans {
		if sp.start != cursor {
			return &ValidationError{Queue: q, Flow: -1, Reason: fmt.Sprintf("gap or overlap at tick %d", cursor)}
		}
		cursor = sp.end
	}
	if cursor != H {
		return &ValidationError{Queue: q, Flow: -1, Reason: fmt.Sprintf("coverage ends at %d, expected %d", cursor, H)}
	}
	return nil
}

// verifyFlowStrands checks invariants (i)-(ix) of §4.7 for one flow.
func verifyFlowStrands(g *Graph, u *UtilizationList, flow *Flow) error {
	byConfig := make(map[ConfigId][]struct {
		queue EgressQueueId
		slot  ReservedSlot
	})
	for q := 0; q < u.QueueCount(); q++ {
		for _, r := range u.Reserved(EgressQueueId(q)) {
			if r.Flow != flow.ID {
				continue
			}
			byConfig[r.Config] = append(byConfig[r.Config], struct {
				queue EgressQueueId
				slot  ReservedSlot
			}{EgressQueueId(q), r})
		}
	}
	if len(byConfig) == 0 {
		return nil
	}
	if len(byConfig) > 1 {
		return &ValidationError{Queue: -1, Flow: flow.ID, Reason: "reservations span more than one configuration"}
	}

	var cfgID ConfigId
	var hops []struct {
		queue EgressQueueId
		slot  ReservedSlot
	}
	for cid, h := range byConfig {
		cfgID, hops = cid, h
	}
	cfg := g.Configuration(cfgID)
	T := TransmissionDelay(flow.FrameSizeBytes)
	P := flow.PeriodUs
	H := u.HyperCycle()
	frames := H / P

	for k := int64(0); k < frames; k++ {
		windowStart, windowEnd := k*P, (k+1)*P
		strand := make([]ReservedSlot, 0, len(cfg.Path))
		for _, qid := range cfg.Path {
			var found *ReservedSlot
			for _, h := range hops {
				if h.queue != qid {
					continue
				}
				if h.slot.Start >= windowStart && h.slot.NextStart <= windowEnd {
					s := h.slot
					found = &s
					break
				}
			}
			if found == nil {
				return &ValidationError{Queue: qid, Flow: flow.ID, Reason: fmt.Sprintf("strand %d incomplete: missing hop", k)}
			}
			strand = append(strand, *found)
		}

		if originNode := g.NodeOf(cfg.Path[0]); originNode != flow.Source {
			return &ValidationError{Queue: cfg.Path[0], Flow: flow.ID, Reason: "strand does not start at flow source"}
		}

		visited := make(map[NetworkNodeId]bool)
		for i, slot := range strand {
			if slot.NextStart-slot.Start != T {
				return &ValidationError{Queue: cfg.Path[i], Flow: flow.ID, Reason: "frame length does not match transmission delay"}
			}
			if i > 0 {
				prev := strand[i-1]
				if slot.Start < prev.NextStart+PropagationDelayUs+ProcessingDelayUs {
					return &ValidationError{Queue: cfg.Path[i], Flow: flow.ID, Reason: "forwarding violates propagation/processing delay"}
				}
				prevQueueDest := g.Queue(cfg.Path[i-1]).Dest
				hopOrigin := g.NodeOf(cfg.Path[i])
				if prevQueueDest != hopOrigin {
					return &ValidationError{Queue: cfg.Path[i], Flow: flow.ID, Reason: "node handover does not match topology"}
				}
			}
			origin := g.NodeOf(cfg.Path[i])
			if visited[origin] {
				return &ValidationError{Queue: cfg.Path[i], Flow: flow.ID, Reason: "strand revisits a node"}
			}
			visited[origin] = true
		}

		last := strand[len(strand)-1]
		if last.NextStart+PropagationDelayUs > windowEnd {
			return &ValidationError{Queue: cfg.Path[len(cfg.Path)-1], Flow: flow.ID, Reason: "last hop arrives after strand deadline"}
		}
	}
	return nil
}
