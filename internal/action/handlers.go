package action

import (
	"context"
	"strconv"
	"strings"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
)

// Handler is one action kind. Each kind is its own type so the recovery step
// it applies is decided next to the action itself.
type Handler interface {
	Kind() entity.ActionKind
	// Do applies the action to a freshly resolved element. last is the fault
	// that ended the previous attempt, nil on the first one.
	Do(ctx context.Context, el ports.Element, last error) (string, error)
	// Recover runs at the start of a retry on the freshly resolved element,
	// with the fault that ended the previous attempt. Only a fatal failure of
	// its own stops the retry loop.
	Recover(ctx context.Context, el ports.Element, fault error) error
}

// Click falls back to a coordinate-independent dispatch after an intercepted click.
type Click struct{}

func (Click) Kind() entity.ActionKind { return entity.ActionClick }

func (Click) Do(ctx context.Context, el ports.Element, last error) (string, error) {
	if apperr.Is(last, apperr.CodeClickIntercepted) {
		return "", el.DispatchClick(ctx)
	}

	return "", el.Click(ctx)
}

func (Click) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type DoubleClick struct{}

func (DoubleClick) Kind() entity.ActionKind { return entity.ActionDoubleClick }

func (DoubleClick) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	return "", el.DoubleClick(ctx)
}

func (DoubleClick) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type ClickAndHold struct{}

func (ClickAndHold) Kind() entity.ActionKind { return entity.ActionClickAndHold }

func (ClickAndHold) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	return "", el.ClickAndHold(ctx)
}

func (ClickAndHold) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type Hover struct{}

func (Hover) Kind() entity.ActionKind { return entity.ActionHover }

func (Hover) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	return "", el.Hover(ctx)
}

func (Hover) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type PressKey struct {
	Key entity.Key
}

func (PressKey) Kind() entity.ActionKind { return entity.ActionPressKey }

func (p PressKey) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	return "", el.PressKey(ctx, p.Key)
}

func (PressKey) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type Clear struct{}

func (Clear) Kind() entity.ActionKind { return entity.ActionClear }

func (Clear) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	return "", el.Clear(ctx)
}

func (Clear) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

// SendText types Text. With ClearFirst the field is emptied in the same
// attempt, so a retried attempt never appends to half-typed input.
type SendText struct {
	Text       string
	ClearFirst bool
}

func (SendText) Kind() entity.ActionKind { return entity.ActionSendText }

func (s SendText) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	if s.ClearFirst {
		if err := el.Clear(ctx); err != nil {
			return "", err
		}
	}

	return "", el.SendKeys(ctx, s.Text)
}

func (SendText) Recover(ctx context.Context, el ports.Element, fault error) error {
	return scrollOnInteraction(ctx, el, fault)
}

type GetText struct{}

func (GetText) Kind() entity.ActionKind { return entity.ActionGetText }

func (GetText) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	text, err := el.Text(ctx)

	return strings.TrimSpace(text), err
}

func (GetText) Recover(context.Context, ports.Element, error) error { return nil }

// GetAttribute yields an empty value for a missing attribute; only a missing
// element is a failure.
type GetAttribute struct {
	Name string
}

func (GetAttribute) Kind() entity.ActionKind { return entity.ActionGetAttribute }

func (g GetAttribute) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	value, _, err := el.Attribute(ctx, g.Name)

	return strings.TrimSpace(value), err
}

func (GetAttribute) Recover(context.Context, ports.Element, error) error { return nil }

type GetDropdownValue struct{}

func (GetDropdownValue) Kind() entity.ActionKind { return entity.ActionGetDropdownValue }

func (GetDropdownValue) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	value, err := el.SelectedOption(ctx)

	return strings.TrimSpace(value), err
}

func (GetDropdownValue) Recover(context.Context, ports.Element, error) error { return nil }

// State reads a boolean element state as "true" or "false".
type State struct {
	Which entity.ActionKind
}

func (s State) Kind() entity.ActionKind { return s.Which }

func (s State) Do(ctx context.Context, el ports.Element, _ error) (string, error) {
	var (
		v   bool
		err error
	)

	switch s.Which {
	case entity.ActionIsEnabled:
		v, err = el.IsEnabled(ctx)
	case entity.ActionIsSelected:
		v, err = el.IsSelected(ctx)
	default:
		v, err = el.IsDisplayed(ctx)
	}

	return strconv.FormatBool(v), err
}

func (State) Recover(context.Context, ports.Element, error) error { return nil }

func scrollOnInteraction(ctx context.Context, el ports.Element, fault error) error {
	if el == nil || !apperr.IsInteraction(fault) {
		return nil
	}

	return el.ScrollIntoView(ctx)
}
