package roddriver

import (
	"context"
	"fmt"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Element is a remote object handle bound to the page it was found on.
type Element struct {
	el     *rod.Element
	page   *rod.Page
	driver *Driver
}

// bounded returns the element bound to ctx and the native action timeout.
func (e *Element) bounded(ctx context.Context) (*rod.Element, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, e.driver.actionTimeout())

	return e.el.Context(ctx), cancel
}

func (e *Element) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "Element.FindElement"

	found, err := e.FindElements(ctx, c)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
	}

	return found[0], nil
}

func (e *Element) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	const op = "Element.FindElements"

	var (
		els rod.Elements
		err error
	)

	if css, ok := c.CSS(); ok {
		els, err = e.el.Elements(css)
	} else if xp, ok := c.XPath(); ok {
		els, err = e.el.ElementsX(xp)
	} else {
		return nil, unsupportedStrategy(c)
	}

	if err != nil {
		return nil, fault(op, err)
	}

	return e.driver.wrapAll(e.page, els), nil
}

// actionable scrolls the element into view and checks that it would receive
// a pointer event, so a covered element fails at once instead of waiting.
func (e *Element) actionable(op string, el *rod.Element) error {
	if err := el.ScrollIntoView(); err != nil {
		return fault(op, err)
	}

	if _, err := el.Interactable(); err != nil {
		return fault(op, err)
	}

	return nil
}

func (e *Element) click(ctx context.Context, op string, count int) error {
	el, cancel := e.bounded(ctx)
	defer cancel()

	if err := e.actionable(op, el); err != nil {
		return err
	}

	return fault(op, el.Click(proto.InputMouseButtonLeft, count))
}

func (e *Element) Click(ctx context.Context) error {
	return e.click(ctx, "Click", 1)
}

func (e *Element) DispatchClick(ctx context.Context) error {
	_, err := e.el.Eval(dispatchClickScript)

	return fault("DispatchClick", err)
}

func (e *Element) DoubleClick(ctx context.Context) error {
	return e.click(ctx, "DoubleClick", 2)
}

func (e *Element) ClickAndHold(ctx context.Context) error {
	const op = "ClickAndHold"

	if err := e.Hover(ctx); err != nil {
		return err
	}

	return fault(op, e.page.Mouse.Down(proto.InputMouseButtonLeft, 1))
}

func (e *Element) Hover(ctx context.Context) error {
	const op = "Hover"

	el, cancel := e.bounded(ctx)
	defer cancel()

	if err := e.actionable(op, el); err != nil {
		return err
	}

	return fault(op, el.Hover())
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	el, cancel := e.bounded(ctx)
	defer cancel()

	return fault("SendKeys", el.Input(text))
}

func (e *Element) PressKey(ctx context.Context, key entity.Key) error {
	const op = "PressKey"

	code, err := keyCode(key)
	if err != nil {
		return err
	}

	if err := e.el.Focus(); err != nil {
		return fault(op, err)
	}

	return fault(op, e.page.Keyboard.Type(code))
}

func (e *Element) Clear(ctx context.Context) error {
	_, err := e.el.Eval(clearScript)

	return fault("Clear", err)
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	_, err := e.el.Eval(scrollIntoViewScript)

	return fault("ScrollIntoView", err)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Text()

	return text, fault("Text", err)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, fault("Attribute", err)
	}

	if v == nil {
		return "", false, nil
	}

	return *v, true, nil
}

func (e *Element) SelectedOption(ctx context.Context) (string, error) {
	res, err := e.el.Eval(selectedOptionScript)
	if err != nil {
		return "", fault("SelectedOption", err)
	}

	return res.Value.Str(), nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := e.el.Visible()

	return v, fault("IsDisplayed", err)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	res, err := e.el.Eval(enabledScript)
	if err != nil {
		return false, fault("IsEnabled", err)
	}

	return res.Value.Bool(), nil
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	res, err := e.el.Eval(selectedStateScript)
	if err != nil {
		return false, fault("IsSelected", err)
	}

	return res.Value.Bool(), nil
}
