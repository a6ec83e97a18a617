package pwdriver

import (
	"context"
	"fmt"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"

	"github.com/playwright-community/playwright-go"
)

// Element wraps an element handle. Handles are never reused across
// resolutions, so a detached handle surfaces as a stale fault.
type Element struct {
	handle playwright.ElementHandle
	page   playwright.Page
	driver *Driver
}

func (e *Element) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "Element.FindElement"

	sel, err := selector(c)
	if err != nil {
		return nil, err
	}

	h, err := e.handle.QuerySelector(sel)
	if err != nil {
		return nil, fault(op, err)
	}

	if h == nil {
		return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
	}

	return e.driver.wrap(e.page, h), nil
}

func (e *Element) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	const op = "Element.FindElements"

	sel, err := selector(c)
	if err != nil {
		return nil, err
	}

	hs, err := e.handle.QuerySelectorAll(sel)
	if err != nil {
		return nil, fault(op, err)
	}

	return e.driver.wrapAll(e.page, hs), nil
}

func (e *Element) Click(ctx context.Context) error {
	return fault("Click", e.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(e.driver.actionTimeout()),
	}))
}

// DispatchClick fires the click event on the element itself, bypassing hit
// testing against whatever overlays it.
func (e *Element) DispatchClick(ctx context.Context) error {
	return fault("DispatchClick", e.handle.DispatchEvent("click"))
}

func (e *Element) DoubleClick(ctx context.Context) error {
	return fault("DoubleClick", e.handle.Dblclick(playwright.ElementHandleDblclickOptions{
		Timeout: playwright.Float(e.driver.actionTimeout()),
	}))
}

func (e *Element) ClickAndHold(ctx context.Context) error {
	if err := e.Hover(ctx); err != nil {
		return err
	}

	return fault("ClickAndHold", e.page.Mouse().Down())
}

func (e *Element) Hover(ctx context.Context) error {
	return fault("Hover", e.handle.Hover(playwright.ElementHandleHoverOptions{
		Timeout: playwright.Float(e.driver.actionTimeout()),
	}))
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	const op = "SendKeys"

	if err := e.handle.Focus(); err != nil {
		return fault(op, err)
	}

	return fault(op, e.page.Keyboard().Type(text))
}

func (e *Element) PressKey(ctx context.Context, key entity.Key) error {
	return fault("PressKey", e.handle.Press(keyName(key), playwright.ElementHandlePressOptions{
		Timeout: playwright.Float(e.driver.actionTimeout()),
	}))
}

func (e *Element) Clear(ctx context.Context) error {
	return fault("Clear", e.handle.Fill("", playwright.ElementHandleFillOptions{
		Timeout: playwright.Float(e.driver.actionTimeout()),
	}))
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	_, err := e.handle.Evaluate(scrollIntoViewScript)

	return fault("ScrollIntoView", err)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.handle.InnerText()
	if err != nil {
		// innerText is undefined outside HTML, e.g. on SVG nodes.
		text, err = e.handle.TextContent()
	}

	return text, fault("Text", err)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.handle.Evaluate(attributeScript, name)
	if err != nil {
		return "", false, fault("Attribute", err)
	}

	s, ok := v.(string)

	return s, ok, nil
}

func (e *Element) SelectedOption(ctx context.Context) (string, error) {
	v, err := e.handle.Evaluate(selectedOptionScript)
	if err != nil {
		return "", fault("SelectedOption", err)
	}

	s, _ := v.(string)

	return s, nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := e.handle.IsVisible()

	return v, fault("IsDisplayed", err)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	v, err := e.handle.IsEnabled()

	return v, fault("IsEnabled", err)
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	v, err := e.handle.Evaluate(selectedStateScript)
	if err != nil {
		return false, fault("IsSelected", err)
	}

	b, _ := v.(bool)

	return b, nil
}
