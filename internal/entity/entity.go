package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// By is a lookup strategy understood by every driver backend.
type By string

const (
	ByCSS             By = "css"
	ByXPath           By = "xpath"
	ByID              By = "id"
	ByName            By = "name"
	ByTag             By = "tag"
	ByClass           By = "class"
	ByLinkText        By = "link"
	ByPartialLinkText By = "partial_link"
)

func (b By) Valid() bool {
	switch b {
	case ByCSS, ByXPath, ByID, ByName, ByTag, ByClass, ByLinkText, ByPartialLinkText:
		return true
	}

	return false
}

// Criterion is the raw, unscoped lookup handed to a driver.
type Criterion struct {
	By    By
	Value string
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s=%s", c.By, c.Value)
}

// CSS returns the criterion as a CSS selector when the strategy has one.
func (c Criterion) CSS() (string, bool) {
	switch c.By {
	case ByCSS:
		return c.Value, true
	case ByID:
		return "[id=" + quoteCSS(c.Value) + "]", true
	case ByName:
		return "[name=" + quoteCSS(c.Value) + "]", true
	case ByTag:
		return c.Value, true
	case ByClass:
		return "." + c.Value, true
	}

	return "", false
}

// XPath returns the criterion as a relative XPath expression when the strategy
// cannot be expressed as CSS.
func (c Criterion) XPath() (string, bool) {
	switch c.By {
	case ByXPath:
		return c.Value, true
	case ByLinkText:
		return ".//a[normalize-space(.)=" + quoteXPath(c.Value) + "]", true
	case ByPartialLinkText:
		return ".//a[contains(normalize-space(.), " + quoteXPath(c.Value) + ")]", true
	}

	return "", false
}

func quoteCSS(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func quoteXPath(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")

	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

// Match is how a row's reference value is compared with the expected one.
type Match string

const (
	MatchEquals   Match = "equals"
	MatchContains Match = "contains"
)

// Matches compares trimmed values; contains is plain substring containment.
func (m Match) Matches(actual, expected string) bool {
	actual = strings.TrimSpace(actual)
	expected = strings.TrimSpace(expected)

	if m == MatchContains {
		return strings.Contains(actual, expected)
	}

	return actual == expected
}

type ActionKind string

const (
	ActionClick            ActionKind = "click"
	ActionClickAndHold     ActionKind = "click_and_hold"
	ActionDoubleClick      ActionKind = "double_click"
	ActionHover            ActionKind = "hover"
	ActionPressKey         ActionKind = "press_key"
	ActionClear            ActionKind = "clear"
	ActionSendText         ActionKind = "send_text"
	ActionGetText          ActionKind = "get_text"
	ActionGetAttribute     ActionKind = "get_attribute"
	ActionGetDropdownValue ActionKind = "get_dropdown_value"
	ActionIsDisplayed      ActionKind = "is_displayed"
	ActionIsEnabled        ActionKind = "is_enabled"
	ActionIsSelected       ActionKind = "is_selected"
)

func (k ActionKind) Mutates() bool {
	switch k {
	case ActionGetText, ActionGetAttribute, ActionGetDropdownValue,
		ActionIsDisplayed, ActionIsEnabled, ActionIsSelected:
		return false
	}

	return true
}

func (k ActionKind) ProducesValue() bool {
	return !k.Mutates()
}

// Outcome is what one Perform call reports. Value is set only for get actions
// that applied.
type Outcome struct {
	InvocationID uuid.UUID
	Kind         ActionKind
	Applied      bool
	Value        *string
	Attempts     int
}

func (o Outcome) Text() string {
	if o.Value == nil {
		return ""
	}

	return *o.Value
}

func (o Outcome) HasValue() bool {
	return o.Value != nil
}

type Key string

// Common keys; backends translate them to their native representation.
const (
	KeyEnter     Key = "Enter"
	KeyTab       Key = "Tab"
	KeyEscape    Key = "Escape"
	KeyBackspace Key = "Backspace"
	KeyDelete    Key = "Delete"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyHome      Key = "Home"
	KeyEnd       Key = "End"
	KeyPageUp    Key = "PageUp"
	KeyPageDown  Key = "PageDown"
	KeySpace     Key = "Space"
)
