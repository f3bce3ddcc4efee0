// Package score computes task priority scores from impact and effort.
package score

// Bounds for impact and effort slider values.
const (
	Min = 0
	Max = 4
)

// Calculate returns the priority score for a task: impact squared times
// effort. Impact dominates: doubling impact roughly quadruples the score,
// doubling effort only doubles it. Inputs outside [Min, Max] are a caller
// contract violation.
func Calculate(impact, effort int) int {
	return impact * impact * effort
}

// InRange reports whether a slider value is within [Min, Max].
func InRange(v int) bool {
	return v >= Min && v <= Max
}
