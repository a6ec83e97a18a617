// Package verify compares observed UI values with expected ones.
//
// Comparisons are pure: they never touch the driver and never fail. Reading
// the actual value is the caller's job.
package verify

import (
	"fmt"
	"strconv"
	"strings"
)

type Mode string

const (
	Equals      Mode = "equals"
	NotEquals   Mode = "not_equals"
	Contains    Mode = "contains"
	NotContains Mode = "not_contains"
)

func (m Mode) Valid() bool {
	switch m {
	case Equals, NotEquals, Contains, NotContains:
		return true
	}

	return false
}

// ParseMode accepts the mode names used in scenario files, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Equals, nil
	}

	if !m.Valid() {
		return "", fmt.Errorf("unknown comparison mode %q", s)
	}

	return m, nil
}

type Result struct {
	Passed   bool
	Mode     Mode
	Subject  string
	Actual   string
	Expected string
	// Missing is set when the actual value could not be read at all.
	Missing bool
}

// Message renders the result as one line for logs and reports.
func (r Result) Message() string {
	subject := r.Subject
	if subject == "" {
		subject = "value"
	}

	status := "passed"
	if !r.Passed {
		status = "failed"
	}

	if r.Missing {
		return fmt.Sprintf("%s %s: expected %s %q, actual value unavailable", subject, status, r.Mode, r.Expected)
	}

	return fmt.Sprintf("%s %s: expected %s %q, actual %q", subject, status, r.Mode, r.Expected, r.Actual)
}

func (r Result) String() string {
	return r.Message()
}

// Compare trims both sides and is otherwise exact and case-sensitive. An
// unknown mode never passes.
func Compare(mode Mode, actual, expected string) Result {
	actual = strings.TrimSpace(actual)
	expected = strings.TrimSpace(expected)
	res := Result{Mode: mode, Actual: actual, Expected: expected}

	switch mode {
	case Equals:
		res.Passed = actual == expected
	case NotEquals:
		res.Passed = actual != expected
	case Contains:
		res.Passed = strings.Contains(actual, expected)
	case NotContains:
		res.Passed = !strings.Contains(actual, expected)
	}

	return res
}

// CompareBool compares boolean states such as visibility or selection.
func CompareBool(subject string, actual, expected bool) Result {
	return Result{
		Passed:   actual == expected,
		Mode:     Equals,
		Subject:  subject,
		Actual:   strconv.FormatBool(actual),
		Expected: strconv.FormatBool(expected),
	}
}

// Unavailable is the failed result for a value that could not be read.
// Negative modes still fail: absence is not evidence.
func Unavailable(mode Mode, expected string) Result {
	return Result{Mode: mode, Expected: expected, Missing: true}
}

// About names what the result describes, for Message.
func (r Result) About(subject string) Result {
	r.Subject = subject

	return r
}
