package sim

// FreeSlot is an unreserved span [Start, Last] (inclusive) on a queue.
type FreeSlot struct {
	Start int64
	Last  int64 // last free tick, inclusive
}

// Len returns the number of ticks covered by the slot.
func (s FreeSlot) Len() int64 { return s.Last - s.Start + 1 }

// ReservedSlot is a reserved span [Start, NextStart) (half-open) on a
// queue, owned by one flow's configuration.
type ReservedSlot struct {
	Start     int64
	NextStart int64
	Flow      FlowId
	Config    ConfigId
}

// Len returns the number of ticks covered by the reservation.
func (s ReservedSlot) Len() int64 { return s.NextStart - s.Start }

// Arrival records when a flow's frame arrived at a queue (used for
// queue-depth metrics and downstream placement lookups).
type Arrival struct {
	Flow FlowId
	Tick int64
}

// SlotReservationRequest is one hop's worth of a placement decision,
// produced by SearchTransmissionOpportunities and consumed by ReserveSlot.
type SlotReservationRequest struct {
	Queue     EgressQueueId
	Start     int64 // send_start
	NextStart int64 // send_end (exclusive)
	Arrival   int64 // arrival_time at this queue before transmission
}
