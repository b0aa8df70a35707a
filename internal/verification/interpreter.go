package verification

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	verdictPattern    = regexp.MustCompile(`VERDICT:\s*(AUTHENTIC|FORGED)`)
	confidencePattern = regexp.MustCompile(`CONFIDENCE:\s*(\d+)%`)
)

// ParseVerdict extracts the verdict and confidence from a comparison reply.
// A reply missing either field yields (INCONCLUSIVE, 50). Confidence is capped at 99
// and has no lower bound.
func ParseVerdict(raw string) (Verdict, int) {
	text := strings.ToUpper(strings.TrimSpace(raw))

	verdict := verdictPattern.FindStringSubmatch(text)
	confidence := confidencePattern.FindStringSubmatch(text)
	if verdict == nil || confidence == nil {
		return VerdictInconclusive, DefaultConfidence
	}

	score, err := strconv.Atoi(confidence[1])
	if err != nil || score > MaxConfidence {
		// digits only, so err means the value overflowed int
		score = MaxConfidence
	}

	return Verdict(verdict[1]), score
}

// ParseYesNo reports whether a content check reply is exactly YES.
// Anything else, including an empty reply, counts as NO.
func ParseYesNo(raw string) bool {
	return strings.ToUpper(strings.TrimSpace(raw)) == "YES"
}
