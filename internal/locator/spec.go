package locator

import (
	"fmt"

	"ui-verbs/internal/entity"
)

// Source says where a row's reference value is read from.
type Source struct {
	Attribute string
}

// Text reads the reference element's visible text.
var Text = Source{}

// Attr reads the named attribute of the reference element.
func Attr(name string) Source { return Source{Attribute: name} }

func (s Source) IsText() bool { return s.Attribute == "" }

func (s Source) String() string {
	if s.IsText() {
		return "text"
	}

	return "@" + s.Attribute
}

// RowMatch selects one row out of a list by looking at a reference element
// inside each row.
type RowMatch struct {
	Reference Locator
	Mode      entity.Match
	Expected  string
	Source    Source
}

func (m RowMatch) String() string {
	return fmt.Sprintf("%s %s of %s %q", m.Source, m.Mode, m.Reference, m.Expected)
}

// RowSpec addresses Target inside the first row of Rows satisfying Match.
// Reference and Target are evaluated relative to the row.
type RowSpec struct {
	Rows   Locator
	Match  RowMatch
	Target Locator
}

func (r RowSpec) String() string {
	return fmt.Sprintf("%s where %s -> %s", r.Rows, r.Match, r.Target)
}

// Spec is the resolution strategy for one action: a single (possibly scoped or
// indexed) locator, or a table row.
type Spec struct {
	single *Locator
	row    *RowSpec
}

func Single(l Locator) Spec { return Spec{single: &l} }

func Row(r RowSpec) Spec { return Spec{row: &r} }

// Locator returns the single locator, if this is a single spec.
func (s Spec) Locator() (Locator, bool) {
	if s.single == nil {
		return Locator{}, false
	}

	return *s.single, true
}

// RowSpec returns the row addressing, if this is a row spec.
func (s Spec) RowSpec() (RowSpec, bool) {
	if s.row == nil {
		return RowSpec{}, false
	}

	return *s.row, true
}

func (s Spec) Validate() error {
	switch {
	case s.single != nil:
		return s.single.Validate()
	case s.row != nil:
		if err := s.row.Rows.Validate(); err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		if err := s.row.Match.Reference.Validate(); err != nil {
			return fmt.Errorf("reference: %w", err)
		}
		if err := s.row.Target.Validate(); err != nil {
			return fmt.Errorf("target: %w", err)
		}
		switch s.row.Match.Mode {
		case entity.MatchEquals, entity.MatchContains:
		default:
			return fmt.Errorf("unknown match mode %q", s.row.Match.Mode)
		}

		return nil
	default:
		return fmt.Errorf("empty resolution spec")
	}
}

func (s Spec) String() string {
	switch {
	case s.single != nil:
		return s.single.String()
	case s.row != nil:
		return s.row.String()
	default:
		return "<empty>"
	}
}
