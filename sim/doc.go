// Package sim provides the offline scheduling core for a deterministic
// Ethernet-like (Time-Sensitive Networking) transmission schedule planner.
//
// # Reading Guide
//
// Start with these files to understand the scheduling kernel:
//   - ids.go: strongly typed node/queue/flow/config identifiers
//   - graph.go: the network/flow/configuration arena (CSR topology)
//   - slot.go, utilization.go: the per-egress-port free/reserved slot ledger
//   - placement.go: ASAP, Balanced and Hermes window-selection policies
//   - scheduler.go: the Scheduler interface and the two-phase admission contract
//   - scenario.go: the per-time-step driver that ties everything together
//
// # Architecture
//
// The sim package defines the scheduling core; collaborators that are
// deliberately out of scope for the core live in sibling packages:
//   - sim/routing: candidate-path oracle (k-shortest / weighted Dijkstra)
//   - sim/netio: network edge-list and scenario JSON parsing
//   - sim/trace: per-time-step decision records for reporting
//   - sim/solverprofile: optional YAML override of sorter/rater/placement defaults
//
// # Key Interfaces
//
// The extension points are small, single- or few-method interfaces:
//   - FlowSorter: orders flows into a scheduling priority sequence
//   - ConfigRater: scores a flow's candidate configuration (lower is better)
//   - CelfRater: three-method (Prepare/Rate/Pick) lazy-greedy rating lifecycle
//   - Scheduler: consumes a required (and optional active) flow set, returns admissions
package sim
