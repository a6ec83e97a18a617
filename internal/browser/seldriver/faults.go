package seldriver

import (
	"fmt"
	"strings"

	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"github.com/tebeka/selenium"
)

// WebDriver error names as reported by the remote end, most specific first.
var faultRules = []apperr.Rule{
	{Contains: "invalid session id", Code: apperr.CodeSessionNotReady},
	{Contains: "session deleted", Code: apperr.CodeSessionNotReady},
	{Contains: "no such window", Code: apperr.CodeSessionNotReady},
	{Contains: "chrome not reachable", Code: apperr.CodeSessionNotReady},
	{Contains: "connection refused", Code: apperr.CodeSessionNotReady},
	{Contains: "stale element reference", Code: apperr.CodeStale},
	{Contains: "element click intercepted", Code: apperr.CodeClickIntercepted},
	{Contains: "move target out of bounds", Code: apperr.CodeOutOfViewport},
	{Contains: "element not interactable", Code: apperr.CodeNotInteractable},
	{Contains: "element not visible", Code: apperr.CodeNotInteractable},
	{Contains: "invalid element state", Code: apperr.CodeNotInteractable},
	{Contains: "no such element", Code: apperr.CodeNotFound},
	{Contains: "no such alert", Code: apperr.CodeNoAlert},
	{Contains: "no alert open", Code: apperr.CodeNoAlert},
	{Contains: "timeout", Code: apperr.CodeTimeout},
}

func fault(op string, err error) error {
	return apperr.Classify(op, err, faultRules, apperr.CodeActionFailed)
}

// missingValue reports the error the client returns for a null attribute.
func missingValue(err error) bool {
	return err != nil && strings.Contains(err.Error(), "nil return value")
}

func byFor(c entity.Criterion) (string, error) {
	switch c.By {
	case entity.ByCSS:
		return selenium.ByCSSSelector, nil
	case entity.ByXPath:
		return selenium.ByXPATH, nil
	case entity.ByID:
		return selenium.ByID, nil
	case entity.ByName:
		return selenium.ByName, nil
	case entity.ByTag:
		return selenium.ByTagName, nil
	case entity.ByClass:
		return selenium.ByClassName, nil
	case entity.ByLinkText:
		return selenium.ByLinkText, nil
	case entity.ByPartialLinkText:
		return selenium.ByPartialLinkText, nil
	}

	return "", apperr.WrapErrorWithReason("byFor", apperr.CodeUnsupported, "unsupported_strategy_"+string(c.By))
}

var keys = map[entity.Key]string{
	entity.KeyEnter:     selenium.EnterKey,
	entity.KeyTab:       selenium.TabKey,
	entity.KeyEscape:    selenium.EscapeKey,
	entity.KeyBackspace: selenium.BackspaceKey,
	entity.KeyDelete:    selenium.DeleteKey,
	entity.KeyArrowUp:   selenium.UpArrowKey,
	entity.KeyArrowDown: selenium.DownArrowKey,
	entity.KeyHome:      selenium.HomeKey,
	entity.KeyEnd:       selenium.EndKey,
	entity.KeyPageUp:    selenium.PageUpKey,
	entity.KeyPageDown:  selenium.PageDownKey,
	entity.KeySpace:     selenium.SpaceKey,
}

func keyCode(k entity.Key) (string, error) {
	if code, ok := keys[k]; ok {
		return code, nil
	}

	return "", apperr.InvalidReqError("keyCode", "key", fmt.Errorf("unknown key %q", k))
}
