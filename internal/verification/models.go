// Package verification runs the signature verification pipeline and the report sub-flow.
package verification

import (
	"time"

	"sign-scan/scanner-backend/internal/history"
	"sign-scan/scanner-backend/internal/imaging"
)

// Verdict is the classification of a signature comparison
type Verdict string

const (
	VerdictAuthentic    Verdict = "AUTHENTIC"
	VerdictForged       Verdict = "FORGED"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
)

const (
	DefaultConfidence = 50
	MaxConfidence     = 99
)

// State is a step of one verification run
type State string

const (
	StateIdle            State = "IDLE"
	StateValidating      State = "VALIDATING"
	StateContentChecking State = "CONTENT_CHECKING"
	StateComparing       State = "COMPARING"
	StateCompleted       State = "COMPLETED"
	StateFailed          State = "FAILED"
)

// Transition records one state change of a run
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Outcome is the result of Verify. On failure only State, Failure and Transitions are set.
type Outcome struct {
	State        State               `json:"state"`
	Verdict      Verdict             `json:"verdict,omitempty"`
	Confidence   int                 `json:"confidence"`
	Ambiguous    bool                `json:"ambiguous"`
	Presentation *Presentation       `json:"presentation,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Warning      string              `json:"warning,omitempty"`
	Failure      string              `json:"failure,omitempty"`
	Record       *history.ScanRecord `json:"record,omitempty"`
	Transitions  []Transition        `json:"transitions"`
}

// VerifyRequest carries the caller and both uploaded images
type VerifyRequest struct {
	UserID   string
	Document *imaging.ImageAsset
	Sample   *imaging.ImageAsset
}

type ReportRequest struct {
	UserID   string
	Document *imaging.ImageAsset
}

// Report is the model's forensic summary, returned verbatim
type Report struct {
	Text        string    `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
}
