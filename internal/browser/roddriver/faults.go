package roddriver

import (
	"context"
	"errors"

	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// CDP error messages, most specific first.
var faultRules = []apperr.Rule{
	{Contains: "websocket: close", Code: apperr.CodeSessionNotReady},
	{Contains: "use of closed network connection", Code: apperr.CodeSessionNotReady},
	{Contains: "target closed", Code: apperr.CodeSessionNotReady},
	{Contains: "session with given id not found", Code: apperr.CodeSessionNotReady},
	{Contains: "node is detached from document", Code: apperr.CodeStale},
	{Contains: "could not find node with given id", Code: apperr.CodeStale},
	{Contains: "could not find object with given id", Code: apperr.CodeStale},
	{Contains: "cannot find context with specified id", Code: apperr.CodeStale},
	{Contains: "execution context was destroyed", Code: apperr.CodeStale},
	{Contains: "no dialog is showing", Code: apperr.CodeNoAlert},
	{Contains: "deadline exceeded", Code: apperr.CodeTimeout},
}

func fault(op string, err error) error {
	if err == nil {
		return nil
	}

	code := ""

	var (
		covered    *rod.CoveredError
		invisible  *rod.InvisibleShapeError
		noPointer  *rod.NoPointerEventsError
		notActable *rod.NotInteractableError
		notFound   *rod.ElementNotFoundError
		objMissing *rod.ObjectNotFoundError
	)

	switch {
	case errors.As(err, &covered):
		code = apperr.CodeClickIntercepted
	case errors.As(err, &invisible):
		code = apperr.CodeOutOfViewport
	case errors.As(err, &noPointer), errors.As(err, &notActable):
		code = apperr.CodeNotInteractable
	case errors.As(err, &notFound):
		code = apperr.CodeNotFound
	case errors.As(err, &objMissing):
		code = apperr.CodeStale
	case errors.Is(err, context.DeadlineExceeded):
		code = apperr.CodeTimeout
	}

	if code == "" {
		return apperr.Classify(op, err, faultRules, apperr.CodeActionFailed)
	}

	return apperr.Wrap(op, code, err, map[string]any{
		apperr.MetaReason: code,
	})
}

var keys = map[entity.Key]input.Key{
	entity.KeyEnter:     input.Enter,
	entity.KeyTab:       input.Tab,
	entity.KeyEscape:    input.Escape,
	entity.KeyBackspace: input.Backspace,
	entity.KeyDelete:    input.Delete,
	entity.KeyArrowUp:   input.ArrowUp,
	entity.KeyArrowDown: input.ArrowDown,
	entity.KeyHome:      input.Home,
	entity.KeyEnd:       input.End,
	entity.KeyPageUp:    input.PageUp,
	entity.KeyPageDown:  input.PageDown,
	entity.KeySpace:     input.Space,
}

func keyCode(k entity.Key) (input.Key, error) {
	if code, ok := keys[k]; ok {
		return code, nil
	}

	return 0, apperr.InvalidReqError("keyCode", "key", errors.New("unknown key "+string(k)))
}
