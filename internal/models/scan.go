package models

// ScanState is the lifecycle state of a registered scan.
// Transitions are one-way: running moves to complete or error, never back.
type ScanState string

const (
	ScanStateRunning  ScanState = "running"
	ScanStateComplete ScanState = "complete"
	ScanStateError    ScanState = "error"
)

// IsTerminal reports whether the state is final.
func (s ScanState) IsTerminal() bool {
	return s == ScanStateComplete || s == ScanStateError
}
