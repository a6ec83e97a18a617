package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/locator"
)

const loginScenario = `
- action: open
  url: https://example.test/login
- action: type
  locator: {id: user}
  text: alice
- action: click
  locator: "button[type=submit]"
- action: click
  row:
    rows: {css: tr, within: {css: "#grid"}}
    reference: {xpath: "./td[1]"}
    match: contains
    expected: John
    target: {css: a.edit}
- action: verify_text
  locator:
    css: li
    index: 1
  mode: not_contains
  expect: Error
- action: wait_visible
  locator: {css: .toast}
  timeout: 2s
`

func TestParse(t *testing.T) {
	steps, err := Parse([]byte(loginScenario), "login.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(steps) != 6 {
		t.Fatalf("len(steps) = %d, want 6", len(steps))
	}

	if steps[0].Action != ActionOpen || steps[0].URL != "https://example.test/login" || steps[0].Line != 2 {
		t.Errorf("step 0 = %+v", steps[0])
	}

	spec, err := steps[2].Spec()
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := spec.Locator(); !l.Equal(locator.CSS("button[type=submit]")) {
		t.Errorf("scalar locator = %s, want css", l)
	}

	spec, err = steps[3].Spec()
	if err != nil {
		t.Fatal(err)
	}
	rs, ok := spec.RowSpec()
	if !ok {
		t.Fatal("step 3 should be a row spec")
	}
	if !rs.Rows.Equal(locator.CSS("tr").Within(locator.CSS("#grid"))) {
		t.Errorf("rows = %s", rs.Rows)
	}
	if rs.Match.Mode != entity.MatchContains || rs.Match.Expected != "John" || !rs.Match.Source.IsText() {
		t.Errorf("match = %s", rs.Match)
	}

	spec, _ = steps[4].Spec()
	if l, _ := spec.Locator(); !l.Equal(locator.CSS("li").At(1)) {
		t.Errorf("indexed locator = %s", l)
	}

	if steps[5].Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", steps[5].Timeout)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		line    int
		message string
	}{
		{"empty", "", 1, "empty scenario"},
		{"unknown action", "- action: teleport", 1, "unknown action"},
		{"missing locator", "- action: open\n  url: x\n- action: click", 3, "locator or row is required"},
		{"two strategies", "- action: click\n  locator: {css: a, id: b}", 1, "exactly one strategy"},
		{"locator and row", "- action: hover\n  locator: a\n  row: {}", 1, "mutually exclusive"},
		{"bad verify mode", "- action: verify_title\n  mode: roughly", 1, "roughly"},
		{"count required", "- action: verify_count\n  locator: li", 1, "count is required"},
		{"row on wait", "- action: wait_visible\n  row: {}", 1, "row is not supported"},
		{"scalar step", "- click", 1, "must be a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "bad.yaml")

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}

			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}

			if !strings.Contains(pe.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", pe.Message, tt.message)
			}
		})
	}
}

func TestParseLine(t *testing.T) {
	step, err := ParseLine(`{action: click, locator: {css: "#go"}}`)
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}

	if step.Action != ActionClick || step.Locator.CSS != "#go" {
		t.Errorf("step = %+v", step)
	}

	if _, err := ParseLine(`{action: click`); err == nil {
		t.Error("unterminated mapping should fail")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "login.yaml")
	if err := os.WriteFile(path, []byte(loginScenario), 0o600); err != nil {
		t.Fatal(err)
	}

	steps, err := ParseFile(path)
	if err != nil || len(steps) != 6 {
		t.Fatalf("ParseFile() = %d steps, %v", len(steps), err)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestStep_ExpectBool(t *testing.T) {
	tests := map[string]bool{"": true, "true": true, "false": false, "no": false}

	for in, want := range tests {
		got, err := Step{Expect: in}.ExpectBool()
		if in == "no" {
			if err == nil {
				t.Errorf("ExpectBool(%q) should fail", in)
			}

			continue
		}

		if err != nil || got != want {
			t.Errorf("ExpectBool(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
}
