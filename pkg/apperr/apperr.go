package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason   = "reason"
	MetaStage    = "stage"
	MetaField    = "field"
	MetaAction   = "action"
	MetaLocator  = "locator"
	MetaURL      = "url"
	MetaBackend  = "backend"
	MetaAttempts = "attempts"

	StageSession     = "session"
	StageResolution  = "resolution"
	StageWait        = "wait"
	StageInteraction = "interaction"
	StageNavigation  = "navigation"
	StageAlert       = "alert"
	StageWindow      = "window"
	StageScenario    = "scenario"

	CodeInternal        = "internal"
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeTimeout         = "timeout"
	CodeActionFailed    = "action_failed"

	// Recoverable UI faults.
	CodeStale            = "stale_element"
	CodeNotInteractable  = "not_interactable"
	CodeClickIntercepted = "click_intercepted"
	CodeOutOfViewport    = "out_of_viewport"
	CodeRowNotMatched    = "row_not_matched"
	CodeNoAlert          = "no_alert"

	// Fatal configuration and session faults.
	CodeSessionNotReady = "session_not_ready"
	CodeUnsupported     = "unsupported"
	CodeInvalidConfig   = "invalid_config"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error) error {
	return Wrap(op, CodeNotFound, err, map[string]any{
		MetaReason: "not_found",
	})
}

// CodeOf returns the code of the outermost *Error in the chain that carries one.
func CodeOf(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}

		if e.Code != "" {
			return e.Code
		}

		err = e.Err
	}

	return ""
}

func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if r, ok := e.Metadata[MetaReason].(string); ok {
			return r
		}
	}

	return ""
}

// IsRecoverable reports whether err is a transient UI fault that a retry may clear.
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case CodeNotFound, CodeStale, CodeNotInteractable, CodeClickIntercepted,
		CodeOutOfViewport, CodeRowNotMatched, CodeTimeout, CodeNoAlert:
		return true
	}

	return false
}

// IsFatal reports configuration and session faults that must never be retried.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case CodeSessionNotReady, CodeUnsupported, CodeInvalidConfig:
		return true
	}

	return false
}

// IsInteraction reports faults raised by the native action rather than by lookup.
func IsInteraction(err error) bool {
	switch CodeOf(err) {
	case CodeNotInteractable, CodeClickIntercepted, CodeOutOfViewport:
		return true
	}

	return false
}
