package pwdriver

import (
	"errors"

	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"github.com/playwright-community/playwright-go"
)

// Order matters: actionability failures are reported inside timeout messages,
// so the specific fragments come before "timeout".
var faultRules = []apperr.Rule{
	{Contains: "target closed", Code: apperr.CodeSessionNotReady},
	{Contains: "has been closed", Code: apperr.CodeSessionNotReady},
	{Contains: "browser has disconnected", Code: apperr.CodeSessionNotReady},
	{Contains: "intercepts pointer events", Code: apperr.CodeClickIntercepted},
	{Contains: "outside of the viewport", Code: apperr.CodeOutOfViewport},
	{Contains: "not attached to the dom", Code: apperr.CodeStale},
	{Contains: "is disposed", Code: apperr.CodeStale},
	{Contains: "execution context was destroyed", Code: apperr.CodeStale},
	{Contains: "element is not visible", Code: apperr.CodeNotInteractable},
	{Contains: "element is not enabled", Code: apperr.CodeNotInteractable},
	{Contains: "element is not editable", Code: apperr.CodeNotInteractable},
	{Contains: "no dialog is showing", Code: apperr.CodeNoAlert},
	{Contains: "timeout", Code: apperr.CodeTimeout},
}

func fault(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, playwright.ErrTargetClosed) {
		return apperr.Wrap(op, apperr.CodeSessionNotReady, err, map[string]any{
			apperr.MetaReason: "target_closed",
			apperr.MetaStage:  apperr.StageSession,
		})
	}

	return apperr.Classify(op, err, faultRules, apperr.CodeActionFailed)
}

// selector renders a criterion in playwright's engine=body form.
func selector(c entity.Criterion) (string, error) {
	if css, ok := c.CSS(); ok {
		return "css=" + css, nil
	}

	if xp, ok := c.XPath(); ok {
		return "xpath=" + xp, nil
	}

	return "", apperr.WrapErrorWithReason("selector", apperr.CodeUnsupported, "unsupported_strategy_"+string(c.By))
}

func keyName(k entity.Key) string {
	if k == entity.KeySpace {
		return " "
	}

	return string(k)
}
