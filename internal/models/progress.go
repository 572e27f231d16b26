package models

// Scan phases reported through the progress bus.
const (
	PhaseCrawling = "crawling"
	PhaseTesting  = "testing"
	PhasePrompts  = "prompts"
	PhaseReport   = "report"
	PhaseComplete = "complete"
)

// ProgressEvent is one update on the progress stream. The JSON shape is
// forwarded verbatim to external listeners, so the field names are part
// of the wire contract.
type ProgressEvent struct {
	Phase    string `json:"phase"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}
