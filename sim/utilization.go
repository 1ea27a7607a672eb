// UtilizationList maintains, per egress queue, the invariant-preserving
// pair of ordered lists described in §4.2: free[q] and reserved[q] tile
// [0, H) exactly. free[q] is kept sorted and merged at all times;
// reserved[q] is sorted lazily via SortReserved.

package sim

import "sort"

// UtilizationList is the per-egress-port time-domain utilization ledger.
type UtilizationList struct {
	hyperCycle int64
	free       [][]FreeSlot
	reserved   [][]ReservedSlot
	arrivals   [][]Arrival
}

// NewUtilizationList creates a ledger for numQueues queues, each starting
// as one free slot spanning the whole hyper-cycle.
func NewUtilizationList(numQueues int, hyperCycle int64) *UtilizationList {
	u := &UtilizationList{
		hyperCycle: hyperCycle,
		free:       make([][]FreeSlot, numQueues),
		reserved:   make([][]ReservedSlot, numQueues),
		arrivals:   make([][]Arrival, numQueues),
	}
	u.Clear()
	return u
}

// HyperCycle returns H.
func (u *UtilizationList) HyperCycle() int64 { return u.hyperCycle }

// QueueCount returns the number of queues tracked.
func (u *UtilizationList) QueueCount() int { return len(u.free) }

// Clear resets every queue to a single free slot covering [0, H) and
// empties reserved and arrivals.
func (u *UtilizationList) Clear() {
	for q := range u.free {
		u.free[q] = []FreeSlot{{Start: 0, Last: u.hyperCycle - 1}}
		u.reserved[q] = nil
		u.arrivals[q] = nil
	}
}

// Free returns an immutable view of queue q's free slots. Callers must
// not mutate the returned slice.
func (u *UtilizationList) Free(q EgressQueueId) []FreeSlot { return u.free[q] }

// Reserved returns an immutable view of queue q's reserved slots.
func (u *UtilizationList) Reserved(q EgressQueueId) []ReservedSlot { return u.reserved[q] }

// Arrivals returns an immutable view of queue q's arrival log.
func (u *UtilizationList) Arrivals(q EgressQueueId) []Arrival { return u.arrivals[q] }

// SortReserved sorts each queue's reserved list by (Start, NextStart).
// Idempotent.
func (u *UtilizationList) SortReserved() {
	for q := range u.reserved {
		r := u.reserved[q]
		sort.Slice(r, func(i, j int) bool {
			if r[i].Start != r[j].Start {
				return r[i].Start < r[j].Start
			}
			return r[i].NextStart < r[j].NextStart
		})
	}
}

// Copy returns a deep, independent copy of u. O(total slots). Used by the
// scenario driver to prepare an offensive-planning attempt without
// touching the defensive ledger (§5 "UtilizationList copy semantics").
func (u *UtilizationList) Copy() *UtilizationList {
	out := &UtilizationList{
		hyperCycle: u.hyperCycle,
		free:       make([][]FreeSlot, len(u.free)),
		reserved:   make([][]ReservedSlot, len(u.reserved)),
		arrivals:   make([][]Arrival, len(u.arrivals)),
	}
	for q := range u.free {
		out.free[q] = append([]FreeSlot(nil), u.free[q]...)
		out.reserved[q] = append([]ReservedSlot(nil), u.reserved[q]...)
		out.arrivals[q] = append([]Arrival(nil), u.arrivals[q]...)
	}
	return out
}

// AssignFrom replaces u's contents with a deep copy of other's. Used when
// the scenario driver (or a Placement policy evaluating several trial
// offsets) adopts one sandboxed UtilizationList wholesale.
func (u *UtilizationList) AssignFrom(other *UtilizationList) {
	cp := other.Copy()
	u.hyperCycle = cp.hyperCycle
	u.free = cp.free
	u.reserved = cp.reserved
	u.arrivals = cp.arrivals
}

// SearchTransmissionOpportunities walks cfg.Path once, attempting to find
// a feasible send window on every hop for one frame released at `release`
// with absolute deadline `deadline`. Pure: never mutates u. Returns the
// per-hop requests and true on success; (nil, false) if any hop has no
// feasible slot.
func (u *UtilizationList) SearchTransmissionOpportunities(cfg *Configuration, flow *Flow, release, deadline int64) ([]SlotReservationRequest, bool) {
	T := TransmissionDelay(flow.FrameSizeBytes)
	arrival := release
	reqs := make([]SlotReservationRequest, 0, len(cfg.Path))

	for _, q := range cfg.Path {
		req, ok := u.SearchSingleHop(q, T, arrival, deadline)
		if !ok {
			return nil, false
		}
		reqs = append(reqs, req)
		arrival = req.NextStart + PropagationDelayUs + ProcessingDelayUs
	}
	return reqs, true
}

// SearchSingleHop finds the first free slot on q satisfying the three
// search constraints (§4.2) for a frame of transmission delay T arriving
// no earlier than `arrival`, with overall deadline `deadline`. Pure: does
// not mutate u. Shared by SearchTransmissionOpportunities (multi-hop) and
// the EDF scheduler's per-event single-hop arbitration.
func (u *UtilizationList) SearchSingleHop(q EgressQueueId, T, arrival, deadline int64) (SlotReservationRequest, bool) {
	effectiveDeadline := deadline - T - PropagationDelayUs
	upperBound := deadline - PropagationDelayUs + T

	for _, slot := range u.free[q] {
		if slot.Last+1 < arrival+T {
			continue // not enough room after the arrival point yet
		}
		if slot.Start > effectiveDeadline {
			break // free[] is sorted ascending; nothing later can work
		}
		start := slot.Start
		if arrival > start {
			start = arrival
		}
		end := start + T
		bound := slot.Last + 1
		if upperBound < bound {
			bound = upperBound
		}
		if end <= bound {
			return SlotReservationRequest{Queue: q, Start: start, NextStart: end, Arrival: arrival}, true
		}
	}
	return SlotReservationRequest{}, false
}

// ReserveSlot commits a single hop's reservation, maintaining the
// complementarity invariant. Returns false iff no free slot encloses
// [req.Start, req.NextStart) — the caller must not treat the reservation
// as made in that case.
func (u *UtilizationList) ReserveSlot(req SlotReservationRequest, flow FlowId, config ConfigId) bool {
	q := req.Queue
	idx := -1
	for i, slot := range u.free[q] {
		if slot.Start <= req.Start && req.NextStart-1 <= slot.Last {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	// Arrivals are appended before the free-list split (§5).
	u.arrivals[q] = append(u.arrivals[q], Arrival{Flow: flow, Tick: req.Arrival})

	slot := u.free[q][idx]
	switch {
	case slot.Start == req.Start && slot.Last == req.NextStart-1:
		// 1. exact match
		u.free[q] = append(u.free[q][:idx], u.free[q][idx+1:]...)
	case slot.Start == req.Start:
		// 2. left-aligned
		u.free[q][idx].Start = req.NextStart
	case slot.Last == req.NextStart-1:
		// 3. right-aligned
		u.free[q][idx].Last = req.Start - 1
	default:
		// 4. strict interior: split into two free slots
		left := FreeSlot{Start: slot.Start, Last: req.Start - 1}
		right := FreeSlot{Start: req.NextStart, Last: slot.Last}
		tail := append([]FreeSlot{right}, u.free[q][idx+1:]...)
		u.free[q] = append(append(u.free[q][:idx], left), tail...)
	}

	u.reserved[q] = append(u.reserved[q], ReservedSlot{
		Start: req.Start, NextStart: req.NextStart, Flow: flow, Config: config,
	})
	return true
}

// FreeSlot inverts a single reservation: inserts [slot.Start, slot.NextStart-1]
// back into free[q], merging with adjacent (zero-gap) neighbors, and
// removes the matching entry from reserved[q]. Restores the
// complementarity invariant.
func (u *UtilizationList) FreeSlot(q EgressQueueId, slot ReservedSlot) {
	newSlot := FreeSlot{Start: slot.Start, Last: slot.NextStart - 1}

	// locate the sorted insertion point
	free := u.free[q]
	pos := sort.Search(len(free), func(i int) bool { return free[i].Start > newSlot.Start })

	mergeLeft := pos > 0 && free[pos-1].Last+1 == newSlot.Start
	mergeRight := pos < len(free) && newSlot.Last+1 == free[pos].Start

	switch {
	case mergeLeft && mergeRight:
		free[pos-1].Last = free[pos].Last
		free = append(free[:pos], free[pos+1:]...)
	case mergeLeft:
		free[pos-1].Last = newSlot.Last
	case mergeRight:
		free[pos].Start = newSlot.Start
	default:
		free = append(free, FreeSlot{})
		copy(free[pos+1:], free[pos:])
		free[pos] = newSlot
	}
	u.free[q] = free

	reserved := u.reserved[q]
	for i, r := range reserved {
		if r.Start == slot.Start && r.NextStart == slot.NextStart && r.Flow == slot.Flow && r.Config == slot.Config {
			u.reserved[q] = append(reserved[:i], reserved[i+1:]...)
			break
		}
	}
}

// RemoveConfigs erases, on every queue, every reserved slot (and arrival
// log entry) belonging to any flow in flowIDs, freeing the vacated spans
// in ascending-start order (required because FreeSlot assumes a
// currently-valid free list).
func (u *UtilizationList) RemoveConfigs(flowIDs []FlowId) {
	victim := make(map[FlowId]bool, len(flowIDs))
	for _, f := range flowIDs {
		victim[f] = true
	}

	for q := range u.reserved {
		var keep, removed []ReservedSlot
		for _, r := range u.reserved[q] {
			if victim[r.Flow] {
				removed = append(removed, r)
			} else {
				keep = append(keep, r)
			}
		}
		sort.Slice(removed, func(i, j int) bool { return removed[i].Start < removed[j].Start })
		u.reserved[q] = keep
		for _, r := range removed {
			u.FreeSlot(EgressQueueId(q), r)
		}

		var keptArrivals []Arrival
		for _, a := range u.arrivals[q] {
			if !victim[a.Flow] {
				keptArrivals = append(keptArrivals, a)
			}
		}
		u.arrivals[q] = keptArrivals
	}
}
