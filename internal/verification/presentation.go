package verification

// Severity is the display tone of a result
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityHigh      Severity = "high"
	SeverityElevated  Severity = "elevated"
	SeverityCaution   Severity = "caution"
	SeverityVerified  Severity = "verified"
	SeverityAmbiguous Severity = "ambiguous"
)

// Presentation labels a verdict for display. It carries no further meaning.
type Presentation struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

const lowConfidenceLabel = "Low Confidence - Further Analysis Needed"

func Classify(verdict Verdict, confidence int) Presentation {
	switch verdict {
	case VerdictForged:
		switch {
		case confidence >= 90:
			return Presentation{Label: "Very High Confidence in Forgery", Severity: SeverityCritical}
		case confidence >= 80:
			return Presentation{Label: "High Confidence in Forgery", Severity: SeverityHigh}
		case confidence >= 70:
			return Presentation{Label: "Moderate Confidence in Forgery", Severity: SeverityElevated}
		default:
			return Presentation{Label: lowConfidenceLabel, Severity: SeverityCaution}
		}
	case VerdictAuthentic:
		switch {
		case confidence >= 90:
			return Presentation{Label: "Very High Confidence Match", Severity: SeverityVerified}
		case confidence >= 80:
			return Presentation{Label: "High Confidence Match", Severity: SeverityVerified}
		case confidence >= 70:
			return Presentation{Label: "Moderate Confidence Match", Severity: SeverityCaution}
		default:
			return Presentation{Label: lowConfidenceLabel, Severity: SeverityCaution}
		}
	default:
		return Presentation{Label: "AI response was ambiguous.", Severity: SeverityAmbiguous}
	}
}
