// Three window-selection policies that consume a flow + a candidate
// configuration and attempt to reserve slots along its path such that
// every frame within one hyper-cycle meets its deadline (§4.3).

package sim

// PlacementFunc reserves, for every frame of flow within one hyper-cycle,
// a feasible window along cfg's path. Mutation is all-or-nothing: on
// failure u is left exactly as it was found.
type PlacementFunc func(u *UtilizationList, cfg *Configuration, flow *Flow) bool

type committedReservation struct {
	Queue EgressQueueId
	Slot  ReservedSlot
}

func rollback(u *UtilizationList, committed []committedReservation) {
	for i := len(committed) - 1; i >= 0; i-- {
		q := committed[i].Queue
		u.FreeSlot(q, committed[i].Slot)
		if n := len(u.arrivals[q]); n > 0 && u.arrivals[q][n-1].Flow == committed[i].Slot.Flow {
			u.arrivals[q] = u.arrivals[q][:n-1]
		}
	}
}

func placeFrames(u *UtilizationList, cfg *Configuration, flow *Flow, release0 int64) (bool, int64, []committedReservation) {
	P := flow.PeriodUs
	H := u.HyperCycle()
	frames := H / P

	var committed []committedReservation
	var maxSpan int64
	for i := int64(0); i < frames; i++ {
		release := release0 + i*P
		deadline := (i + 1) * P
		reqs, ok := u.SearchTransmissionOpportunities(cfg, flow, release, deadline)
		if !ok {
			rollback(u, committed)
			return false, 0, nil
		}
		for _, r := range reqs {
			if !u.ReserveSlot(r, flow.ID, cfg.ID) {
				rollback(u, committed)
				return false, 0, nil
			}
			committed = append(committed, committedReservation{Queue: r.Queue, Slot: ReservedSlot{
				Start: r.Start, NextStart: r.NextStart, Flow: flow.ID, Config: cfg.ID,
			}})
		}
		last := reqs[len(reqs)-1]
		span := last.NextStart - release
		if span > maxSpan {
			maxSpan = span
		}
	}
	return true, maxSpan, committed
}

// ASAP places every frame of flow at the earliest feasible window on
// every hop, frame by frame, so that later frames see the reservations
// made by earlier ones. Deterministic: identical inputs produce an
// identical reservation set (testable property 5).
func ASAP(u *UtilizationList, cfg *Configuration, flow *Flow) bool {
	ok, _, _ := placeFrames(u, cfg, flow, 0)
	return ok
}

// Balanced tries every sub-cycle offset in [0, P/subCycle) and keeps the
// one whose slowest frame has the shortest span from its release to the
// end of its last hop, committing only the winning offset (§4.3).
func Balanced(subCycle int64) PlacementFunc {
	return func(u *UtilizationList, cfg *Configuration, flow *Flow) bool {
		P := flow.PeriodUs
		if subCycle <= 0 {
			return ASAP(u, cfg, flow)
		}
		K := P / subCycle

		var best *UtilizationList
		var bestMetric int64
		for k := int64(0); k < K; k++ {
			trial := u.Copy()
			ok, metric, _ := placeFrames(trial, cfg, flow, k*subCycle)
			if !ok {
				continue
			}
			if best == nil || metric < bestMetric {
				best, bestMetric = trial, metric
			}
		}
		if best == nil {
			return false
		}
		u.AssignFrom(best)
		return true
	}
}

// HermesPlace reserves a single link's slot for one frame, given only a
// latest_offset deadline bound (§4.3 Hermes). Among free slots on q with
// Start <= latestOffset and length >= T, picks the one with the largest
// Start (latest-fit) and reserves [min(end-T, latestOffset), +T). There
// is no earliest-side bound: the caller's phase-ordered schedule is what
// keeps hops consistent across a flow's path.
func HermesPlace(u *UtilizationList, q EgressQueueId, flow *Flow, cfg *Configuration, latestOffset int64) (SlotReservationRequest, bool) {
	T := TransmissionDelay(flow.FrameSizeBytes)

	best := -1
	for i, slot := range u.Free(q) {
		if slot.Start > latestOffset {
			continue
		}
		if slot.Last+1-slot.Start < T {
			continue
		}
		if best < 0 || slot.Start > u.Free(q)[best].Start {
			best = i
		}
	}
	if best < 0 {
		return SlotReservationRequest{}, false
	}
	slot := u.Free(q)[best]
	start := slot.Last + 1 - T
	if start > latestOffset {
		start = latestOffset
	}
	req := SlotReservationRequest{Queue: q, Start: start, NextStart: start + T, Arrival: start}
	if !u.ReserveSlot(req, flow.ID, cfg.ID) {
		return SlotReservationRequest{}, false
	}
	return req, true
}
