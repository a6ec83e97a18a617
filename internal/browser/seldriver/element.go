package seldriver

import (
	"context"
	"fmt"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"

	"github.com/tebeka/selenium"
)

// Element is a WebDriver element reference. The remote end reports a stale
// reference once the node leaves the DOM.
type Element struct {
	we     selenium.WebElement
	driver *Driver
}

func (e *Element) FindElement(ctx context.Context, c entity.Criterion) (ports.Element, error) {
	const op = "Element.FindElement"

	by, err := byFor(c)
	if err != nil {
		return nil, err
	}

	we, err := e.we.FindElement(by, c.Value)
	if err != nil {
		if apperr.Is(fault(op, err), apperr.CodeNotFound) {
			return nil, apperr.NotFoundError(op, fmt.Errorf("no element for %s", c))
		}

		return nil, fault(op, err)
	}

	return e.driver.wrap(we), nil
}

func (e *Element) FindElements(ctx context.Context, c entity.Criterion) ([]ports.Element, error) {
	by, err := byFor(c)
	if err != nil {
		return nil, err
	}

	wes, err := e.we.FindElements(by, c.Value)
	if err != nil {
		return nil, fault("Element.FindElements", err)
	}

	return e.driver.wrapAll(wes), nil
}

func (e *Element) Click(ctx context.Context) error {
	return fault("Click", e.we.Click())
}

func (e *Element) DispatchClick(ctx context.Context) error {
	_, err := e.driver.wd.ExecuteScript(dispatchClickScript, []interface{}{e.we})

	return fault("DispatchClick", err)
}

func (e *Element) DoubleClick(ctx context.Context) error {
	const op = "DoubleClick"

	if err := e.we.MoveTo(0, 0); err != nil {
		return fault(op, err)
	}

	return fault(op, e.driver.wd.DoubleClick())
}

func (e *Element) ClickAndHold(ctx context.Context) error {
	const op = "ClickAndHold"

	if err := e.we.MoveTo(0, 0); err != nil {
		return fault(op, err)
	}

	return fault(op, e.driver.wd.ButtonDown())
}

func (e *Element) Hover(ctx context.Context) error {
	return fault("Hover", e.we.MoveTo(0, 0))
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	return fault("SendKeys", e.we.SendKeys(text))
}

func (e *Element) PressKey(ctx context.Context, key entity.Key) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}

	return fault("PressKey", e.we.SendKeys(code))
}

func (e *Element) Clear(ctx context.Context) error {
	return fault("Clear", e.we.Clear())
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	_, err := e.driver.wd.ExecuteScript(scrollIntoViewScript, []interface{}{e.we})

	return fault("ScrollIntoView", err)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.we.Text()
	if missingValue(err) {
		return "", nil
	}

	return text, fault("Text", err)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.we.GetAttribute(name)
	if missingValue(err) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fault("Attribute", err)
	}

	return v, true, nil
}

func (e *Element) SelectedOption(ctx context.Context) (string, error) {
	v, err := e.driver.wd.ExecuteScript(selectedOptionScript, []interface{}{e.we})
	if err != nil {
		return "", fault("SelectedOption", err)
	}

	s, _ := v.(string)

	return s, nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := e.we.IsDisplayed()

	return v, fault("IsDisplayed", err)
}

func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	v, err := e.we.IsEnabled()

	return v, fault("IsEnabled", err)
}

func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	v, err := e.we.IsSelected()

	return v, fault("IsSelected", err)
}
