// Package scenario reads UI verb steps from YAML and runs them against a session.
package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
	"ui-verbs/internal/verify"

	"gopkg.in/yaml.v3"
)

type Action string

const (
	// Page
	ActionOpen          Action = "open"
	ActionPressPageKey  Action = "press_page_key"
	ActionScreenshot    Action = "screenshot"
	ActionDeleteCookies Action = "delete_cookies"

	// Elements
	ActionClick         Action = "click"
	ActionDoubleClick   Action = "double_click"
	ActionClickAndHold  Action = "click_and_hold"
	ActionHover         Action = "hover"
	ActionPressKey      Action = "press_key"
	ActionClear         Action = "clear"
	ActionType          Action = "type"
	ActionSendText      Action = "send_text"
	ActionText          Action = "get_text"
	ActionAttribute     Action = "get_attribute"
	ActionDropdownValue Action = "get_dropdown_value"

	// Verifications
	ActionVerifyText      Action = "verify_text"
	ActionVerifyAttribute Action = "verify_attribute"
	ActionVerifyDisplayed Action = "verify_displayed"
	ActionVerifySelected  Action = "verify_selected"
	ActionVerifyURL       Action = "verify_url"
	ActionVerifyTitle     Action = "verify_title"
	ActionVerifyCount     Action = "verify_count"

	// Waits
	ActionWaitVisible   Action = "wait_visible"
	ActionWaitInvisible Action = "wait_invisible"
	ActionWaitURL       Action = "wait_url"
	ActionWaitTitle     Action = "wait_title"

	// Alerts and windows
	ActionAcceptAlert   Action = "accept_alert"
	ActionDismissAlert  Action = "dismiss_alert"
	ActionAlertText     Action = "get_alert_text"
	ActionSendAlertText Action = "send_alert_text"
	ActionSwitchWindow  Action = "switch_window"
)

// NewWindow as a switch_window handle selects the most recently opened window.
const NewWindow = "new"

// Step is one scenario line. Which fields matter depends on Action.
type Step struct {
	Action    Action        `yaml:"action"`
	Locator   *Selector     `yaml:"locator"`
	Row       *RowSelector  `yaml:"row"`
	Text      string        `yaml:"text"`
	Key       entity.Key    `yaml:"key"`
	Attribute string        `yaml:"attribute"`
	Mode      string        `yaml:"mode"`
	Expect    string        `yaml:"expect"`
	Count     *int          `yaml:"count"`
	URL       string        `yaml:"url"`
	Path      string        `yaml:"path"`
	Handle    string        `yaml:"handle"`
	Timeout   time.Duration `yaml:"timeout"`

	Line int `yaml:"-"`
}

func (s Step) String() string {
	target := ""

	switch {
	case s.Locator != nil:
		if l, err := s.Locator.Locator(); err == nil {
			target = " " + l.String()
		}
	case s.Row != nil:
		if spec, err := s.Row.Spec(); err == nil {
			target = " " + spec.String()
		}
	}

	return fmt.Sprintf("%s%s", s.Action, target)
}

// Spec returns the resolution strategy of an element step.
func (s Step) Spec() (locator.Spec, error) {
	switch {
	case s.Locator != nil && s.Row != nil:
		return locator.Spec{}, errors.New("locator and row are mutually exclusive")
	case s.Locator != nil:
		l, err := s.Locator.Locator()
		if err != nil {
			return locator.Spec{}, err
		}

		return locator.Single(l), nil
	case s.Row != nil:
		return s.Row.Spec()
	}

	return locator.Spec{}, errors.New("locator or row is required")
}

// VerifyMode parses Mode; empty means equals.
func (s Step) VerifyMode() (verify.Mode, error) {
	return verify.ParseMode(s.Mode)
}

// MatchMode parses Mode for waits, which only know equals and contains.
func (s Step) MatchMode() (entity.Match, error) {
	switch entity.Match(s.Mode) {
	case "", entity.MatchEquals:
		return entity.MatchEquals, nil
	case entity.MatchContains:
		return entity.MatchContains, nil
	}

	return "", fmt.Errorf("unknown match mode %q", s.Mode)
}

// ExpectBool parses Expect for the boolean verifications; empty means true.
func (s Step) ExpectBool() (bool, error) {
	if s.Expect == "" {
		return true, nil
	}

	return strconv.ParseBool(s.Expect)
}

// Validate checks that the fields the action needs are present.
func (s Step) Validate() error {
	switch s.Action {
	case ActionOpen:
		return require(s.URL != "", "url")
	case ActionPressPageKey:
		return require(s.Key != "", "key")
	case ActionScreenshot:
		return require(s.Path != "", "path")
	case ActionDeleteCookies, ActionAcceptAlert, ActionDismissAlert, ActionAlertText, ActionSendAlertText:
		return nil
	case ActionSwitchWindow:
		return require(s.Handle != "", "handle")

	case ActionClick, ActionDoubleClick, ActionClickAndHold, ActionHover, ActionClear,
		ActionType, ActionSendText, ActionText, ActionDropdownValue:
		return s.validateSpec()
	case ActionPressKey:
		return errors.Join(s.validateSpec(), require(s.Key != "", "key"))
	case ActionAttribute:
		return errors.Join(s.validateSpec(), require(s.Attribute != "", "attribute"))

	case ActionVerifyText:
		return errors.Join(s.validateSpec(), s.validateVerifyMode())
	case ActionVerifyAttribute:
		return errors.Join(s.validateSpec(), s.validateVerifyMode(), require(s.Attribute != "", "attribute"))
	case ActionVerifyDisplayed, ActionVerifySelected:
		_, err := s.ExpectBool()

		return errors.Join(s.validateSpec(), err)
	case ActionVerifyURL, ActionVerifyTitle:
		return s.validateVerifyMode()
	case ActionVerifyCount:
		return errors.Join(s.validateLocator(), require(s.Count != nil && *s.Count >= 0, "count"))

	case ActionWaitVisible, ActionWaitInvisible:
		return s.validateLocator()
	case ActionWaitURL, ActionWaitTitle:
		_, err := s.MatchMode()

		return err
	}

	return fmt.Errorf("unknown action %q", s.Action)
}

func (s Step) validateSpec() error {
	spec, err := s.Spec()
	if err != nil {
		return err
	}

	return spec.Validate()
}

// validateLocator is for steps that take a plain locator, not a row.
func (s Step) validateLocator() error {
	if s.Row != nil {
		return errors.New("row is not supported here")
	}

	if s.Locator == nil {
		return errors.New("locator is required")
	}

	l, err := s.Locator.Locator()
	if err != nil {
		return err
	}

	return l.Validate()
}

func (s Step) validateVerifyMode() error {
	_, err := s.VerifyMode()

	return err
}

func require(ok bool, field string) error {
	if ok {
		return nil
	}

	return fmt.Errorf("%s is required", field)
}

// Selector is the YAML form of a locator: exactly one strategy, optionally
// scoped under a parent and indexed among visible matches. A bare string is
// a CSS selector.
type Selector struct {
	CSS         string    `yaml:"css"`
	XPath       string    `yaml:"xpath"`
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Tag         string    `yaml:"tag"`
	Class       string    `yaml:"class"`
	Link        string    `yaml:"link"`
	PartialLink string    `yaml:"partial_link"`
	Within      *Selector `yaml:"within"`
	Index       *int      `yaml:"index"`
}

type selectorRaw Selector

func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.CSS = node.Value

		return nil
	}

	return node.Decode((*selectorRaw)(s))
}

func (s *Selector) Locator() (locator.Locator, error) {
	var strategies []locator.Locator

	for _, c := range []struct {
		by    entity.By
		value string
	}{
		{entity.ByCSS, s.CSS},
		{entity.ByXPath, s.XPath},
		{entity.ByID, s.ID},
		{entity.ByName, s.Name},
		{entity.ByTag, s.Tag},
		{entity.ByClass, s.Class},
		{entity.ByLinkText, s.Link},
		{entity.ByPartialLinkText, s.PartialLink},
	} {
		if c.value != "" {
			strategies = append(strategies, locator.New(c.by, c.value))
		}
	}

	if len(strategies) != 1 {
		return locator.Locator{}, fmt.Errorf("locator needs exactly one strategy, got %d", len(strategies))
	}

	l := strategies[0]

	if s.Within != nil {
		parent, err := s.Within.Locator()
		if err != nil {
			return locator.Locator{}, fmt.Errorf("within: %w", err)
		}

		l = l.Within(parent)
	}

	if s.Index != nil {
		l = l.At(*s.Index)
	}

	return l, nil
}

// RowSelector picks Target inside the first row of Rows whose Reference
// matches Expected. Attribute reads the reference's attribute instead of its
// text.
type RowSelector struct {
	Rows      *Selector `yaml:"rows"`
	Reference *Selector `yaml:"reference"`
	Match     string    `yaml:"match"`
	Expected  string    `yaml:"expected"`
	Attribute string    `yaml:"attribute"`
	Target    *Selector `yaml:"target"`
}

func (r *RowSelector) Spec() (locator.Spec, error) {
	rows, err := rowPart("rows", r.Rows)
	if err != nil {
		return locator.Spec{}, err
	}

	reference, err := rowPart("reference", r.Reference)
	if err != nil {
		return locator.Spec{}, err
	}

	target, err := rowPart("target", r.Target)
	if err != nil {
		return locator.Spec{}, err
	}

	mode := entity.Match(r.Match)
	if mode == "" {
		mode = entity.MatchEquals
	}

	source := locator.Text
	if r.Attribute != "" {
		source = locator.Attr(r.Attribute)
	}

	return locator.Row(locator.RowSpec{
		Rows: rows,
		Match: locator.RowMatch{
			Reference: reference,
			Mode:      mode,
			Expected:  r.Expected,
			Source:    source,
		},
		Target: target,
	}), nil
}

func rowPart(name string, sel *Selector) (locator.Locator, error) {
	if sel == nil {
		return locator.Locator{}, fmt.Errorf("row %s is required", name)
	}

	l, err := sel.Locator()
	if err != nil {
		return locator.Locator{}, fmt.Errorf("row %s: %w", name, err)
	}

	return l, nil
}
