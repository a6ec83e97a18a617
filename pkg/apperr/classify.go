package apperr

import (
	"strings"
)

// Rule maps a driver error message fragment to a code. Matching is
// case-insensitive.
type Rule struct {
	Contains string
	Code     string
}

// Classify wraps a native driver error with the code of the first matching
// rule, or fallback when none matches. Errors that already carry a code are
// returned unchanged.
func Classify(op string, err error, rules []Rule, fallback string) error {
	if err == nil {
		return nil
	}

	if CodeOf(err) != "" {
		return err
	}

	code := fallback
	msg := strings.ToLower(err.Error())

	for _, r := range rules {
		if strings.Contains(msg, strings.ToLower(r.Contains)) {
			code = r.Code

			break
		}
	}

	return Wrap(op, code, err, map[string]any{
		MetaReason: code,
		MetaStage:  stageOf(code),
	})
}

func stageOf(code string) string {
	switch code {
	case CodeSessionNotReady, CodeUnsupported, CodeInvalidConfig:
		return StageSession
	case CodeNotFound, CodeStale:
		return StageResolution
	case CodeNoAlert:
		return StageAlert
	case CodeTimeout:
		return StageWait
	}

	return StageInteraction
}
