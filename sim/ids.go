package sim

import "fmt"

// NetworkNodeId identifies a node in the network topology. Distinct from
// EgressQueueId, FlowId and ConfigId so the compiler catches accidental
// mixing between id spaces (§9 "Strong typing of ids").
type NetworkNodeId int

// EgressQueueId identifies a single egress queue (transmit port) and
// doubles as its index into the Graph's dense queue array.
type EgressQueueId int

// FlowId identifies a periodic source-to-destination stream.
type FlowId int

// ConfigId identifies one candidate path (Configuration) for a flow.
// ConfigIds are globally unique and monotonically increasing.
type ConfigId int

func (n NetworkNodeId) String() string  { return fmt.Sprintf("node#%d", int(n)) }
func (q EgressQueueId) String() string  { return fmt.Sprintf("queue#%d", int(q)) }
func (f FlowId) String() string         { return fmt.Sprintf("flow#%d", int(f)) }
func (c ConfigId) String() string       { return fmt.Sprintf("config#%d", int(c)) }

// PreconditionViolation indicates a bug: the caller addressed an id that
// does not exist in the Graph. Per §7 this is fatal and is reported as a
// panic rather than a recovered error, matching the teacher's
// panic(fmt.Sprintf(...)) idiom for unrecognized policy names.
type PreconditionViolation struct {
	Kind string
	ID   fmt.Stringer
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("precondition violation: unknown %s %s", e.Kind, e.ID)
}

func panicUnknown(kind string, id fmt.Stringer) {
	panic(&PreconditionViolation{Kind: kind, ID: id})
}
