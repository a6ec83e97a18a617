package entity

import "testing"

func TestMatch_Matches(t *testing.T) {
	tests := []struct {
		mode     Match
		actual   string
		expected string
		want     bool
	}{
		{MatchEquals, "  John Smith ", "John Smith", true},
		{MatchEquals, "John Smithers", "John Smith", false},
		{MatchContains, "John Smithers", "Smith", true},
		{MatchContains, "Jane", "John", false},
		{MatchContains, "anything", " ", true},
	}

	for _, tt := range tests {
		if got := tt.mode.Matches(tt.actual, tt.expected); got != tt.want {
			t.Errorf("%s.Matches(%q, %q) = %v, want %v", tt.mode, tt.actual, tt.expected, got, tt.want)
		}
	}
}

func TestCriterion_Conversions(t *testing.T) {
	tests := []struct {
		c       Criterion
		css     string
		xpath   string
		isCSS   bool
		isXPath bool
	}{
		{Criterion{ByCSS, "div > a"}, "div > a", "", true, false},
		{Criterion{ByID, "main"}, `[id="main"]`, "", true, false},
		{Criterion{ByName, `q"x`}, `[name="q\"x"]`, "", true, false},
		{Criterion{ByClass, "btn"}, ".btn", "", true, false},
		{Criterion{ByXPath, "./td[2]"}, "", "./td[2]", false, true},
		{Criterion{ByLinkText, "Sign in"}, "", ".//a[normalize-space(.)='Sign in']", false, true},
		{Criterion{ByPartialLinkText, "it's"}, "", `.//a[contains(normalize-space(.), "it's")]`, false, true},
	}

	for _, tt := range tests {
		css, ok := tt.c.CSS()
		if ok != tt.isCSS || css != tt.css {
			t.Errorf("%s CSS() = %q, %v, want %q, %v", tt.c, css, ok, tt.css, tt.isCSS)
		}

		xp, ok := tt.c.XPath()
		if ok != tt.isXPath || xp != tt.xpath {
			t.Errorf("%s XPath() = %q, %v, want %q, %v", tt.c, xp, ok, tt.xpath, tt.isXPath)
		}
	}
}

func TestQuoteXPath_BothQuotes(t *testing.T) {
	got := quoteXPath(`a'b"c`)
	want := `concat('a', "'", 'b"c')`

	if got != want {
		t.Errorf("quoteXPath() = %s, want %s", got, want)
	}
}

func TestActionKind_ProducesValue(t *testing.T) {
	for _, k := range []ActionKind{ActionGetText, ActionGetAttribute, ActionGetDropdownValue, ActionIsDisplayed} {
		if !k.ProducesValue() || k.Mutates() {
			t.Errorf("%s should produce a value without mutating", k)
		}
	}

	for _, k := range []ActionKind{ActionClick, ActionSendText, ActionClear, ActionPressKey} {
		if k.ProducesValue() {
			t.Errorf("%s should not produce a value", k)
		}
	}
}
