// Package locator describes where an element lives without touching the driver.
//
// A Locator is an immutable value: a criterion plus an addressing mode. Builder
// methods return modified copies, so a Locator can be shared freely between
// test helpers.
package locator

import (
	"fmt"
	"strings"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
)

type Mode int

const (
	Absolute Mode = iota
	ChildOf
	IndexedChildOf
)

func (m Mode) String() string {
	switch m {
	case ChildOf:
		return "child"
	case IndexedChildOf:
		return "indexed"
	default:
		return "absolute"
	}
}

type Locator struct {
	criterion     entity.Criterion
	parent        *Locator
	parentElement ports.Element
	index         int
	indexed       bool
}

func New(by entity.By, value string) Locator {
	return Locator{criterion: entity.Criterion{By: by, Value: value}}
}

func CSS(selector string) Locator  { return New(entity.ByCSS, selector) }
func XPath(expr string) Locator    { return New(entity.ByXPath, expr) }
func ID(id string) Locator         { return New(entity.ByID, id) }
func Name(name string) Locator     { return New(entity.ByName, name) }
func Tag(tag string) Locator       { return New(entity.ByTag, tag) }
func Class(class string) Locator   { return New(entity.ByClass, class) }
func LinkText(text string) Locator { return New(entity.ByLinkText, text) }

func PartialLinkText(text string) Locator {
	return New(entity.ByPartialLinkText, text)
}

// Within scopes the locator under a parent locator.
func (l Locator) Within(parent Locator) Locator {
	p := parent
	l.parent = &p
	l.parentElement = nil

	return l
}

// WithinElement scopes the locator under an already resolved element.
func (l Locator) WithinElement(el ports.Element) Locator {
	l.parent = nil
	l.parentElement = el

	return l
}

// At addresses the i-th visible match (zero based).
func (l Locator) At(index int) Locator {
	l.index = index
	l.indexed = true

	return l
}

func (l Locator) Criterion() entity.Criterion { return l.criterion }
func (l Locator) Parent() (Locator, bool) {
	if l.parent == nil {
		return Locator{}, false
	}

	return *l.parent, true
}
func (l Locator) ParentElement() ports.Element { return l.parentElement }
func (l Locator) Index() (int, bool)           { return l.index, l.indexed }

func (l Locator) Mode() Mode {
	switch {
	case l.indexed:
		return IndexedChildOf
	case l.parent != nil || l.parentElement != nil:
		return ChildOf
	default:
		return Absolute
	}
}

func (l Locator) IsZero() bool {
	return l.criterion.Value == "" && l.criterion.By == ""
}

func (l Locator) Validate() error {
	if !l.criterion.By.Valid() {
		return fmt.Errorf("unknown locator strategy %q", l.criterion.By)
	}

	if strings.TrimSpace(l.criterion.Value) == "" {
		return fmt.Errorf("empty %s locator", l.criterion.By)
	}

	if l.indexed && l.index < 0 {
		return fmt.Errorf("negative index %d", l.index)
	}

	if l.parent != nil {
		return l.parent.Validate()
	}

	return nil
}

// Equal compares structurally. Resolved parent elements compare by identity
// since the driver offers nothing better.
func (l Locator) Equal(o Locator) bool {
	if l.criterion != o.criterion || l.indexed != o.indexed || l.parentElement != o.parentElement {
		return false
	}

	if l.indexed && l.index != o.index {
		return false
	}

	if (l.parent == nil) != (o.parent == nil) {
		return false
	}

	return l.parent == nil || l.parent.Equal(*o.parent)
}

func (l Locator) String() string {
	var b strings.Builder

	switch {
	case l.parent != nil:
		b.WriteString(l.parent.String())
		b.WriteString(" >> ")
	case l.parentElement != nil:
		b.WriteString("<element> >> ")
	}

	b.WriteString(l.criterion.String())

	if l.indexed {
		fmt.Fprintf(&b, " [%d]", l.index)
	}

	return b.String()
}
