package wait

import (
	"context"
	"fmt"
	"strings"

	"ui-verbs/internal/entity"
	"ui-verbs/internal/ports"
	"ui-verbs/pkg/apperr"
)

func Present(scope ports.Searcher, c entity.Criterion) Condition[ports.Element] {
	return Condition[ports.Element]{
		Name: "present(" + c.String() + ")",
		Check: func(ctx context.Context) (ports.Element, bool, error) {
			el, err := scope.FindElement(ctx, c)
			if err != nil {
				if apperr.Is(err, apperr.CodeNotFound) {
					return nil, false, nil
				}

				return nil, false, err
			}

			return el, el != nil, nil
		},
	}
}

// Visible holds once at least index+1 matches are displayed and yields the
// index-th displayed one, in document order.
func Visible(scope ports.Searcher, c entity.Criterion, index int) Condition[ports.Element] {
	return Condition[ports.Element]{
		Name: fmt.Sprintf("visible(%s)[%d]", c, index),
		Check: func(ctx context.Context) (ports.Element, bool, error) {
			shown, err := displayed(ctx, scope, c)
			if err != nil {
				return nil, false, err
			}

			if index < 0 || index >= len(shown) {
				return nil, false, nil
			}

			return shown[index], true, nil
		},
	}
}

// AllVisible yields every displayed match once there is at least one.
func AllVisible(scope ports.Searcher, c entity.Criterion) Condition[[]ports.Element] {
	return Condition[[]ports.Element]{
		Name: "all_visible(" + c.String() + ")",
		Check: func(ctx context.Context) ([]ports.Element, bool, error) {
			shown, err := displayed(ctx, scope, c)
			if err != nil {
				return nil, false, err
			}

			return shown, len(shown) > 0, nil
		},
	}
}

func Clickable(scope ports.Searcher, c entity.Criterion) Condition[ports.Element] {
	return Condition[ports.Element]{
		Name: "clickable(" + c.String() + ")",
		Check: func(ctx context.Context) (ports.Element, bool, error) {
			el, ok, err := Present(scope, c).Check(ctx)
			if err != nil || !ok {
				return nil, false, err
			}

			shown, err := el.IsDisplayed(ctx)
			if err != nil || !shown {
				return nil, false, err
			}

			enabled, err := el.IsEnabled(ctx)
			if err != nil || !enabled {
				return nil, false, err
			}

			return el, true, nil
		},
	}
}

// InvisibleOrAbsent holds when no match is displayed. A match going stale
// while being checked counts as gone.
func InvisibleOrAbsent(scope ports.Searcher, c entity.Criterion) Condition[bool] {
	return Condition[bool]{
		Name: "invisible(" + c.String() + ")",
		Check: func(ctx context.Context) (bool, bool, error) {
			els, err := scope.FindElements(ctx, c)
			if err != nil {
				if apperr.Is(err, apperr.CodeNotFound) {
					return true, true, nil
				}

				return false, false, err
			}

			for _, el := range els {
				shown, err := el.IsDisplayed(ctx)
				if err != nil {
					if apperr.Is(err, apperr.CodeStale) || apperr.Is(err, apperr.CodeNotFound) {
						continue
					}

					return false, false, err
				}

				if shown {
					return false, false, nil
				}
			}

			return true, true, nil
		},
	}
}

func SelectionIs(scope ports.Searcher, c entity.Criterion, expected bool) Condition[ports.Element] {
	return Condition[ports.Element]{
		Name: fmt.Sprintf("selected(%s)=%t", c, expected),
		Check: func(ctx context.Context) (ports.Element, bool, error) {
			el, ok, err := Present(scope, c).Check(ctx)
			if err != nil || !ok {
				return nil, false, err
			}

			selected, err := el.IsSelected(ctx)
			if err != nil {
				return nil, false, err
			}

			return el, selected == expected, nil
		},
	}
}

func TextEquals(scope ports.Searcher, c entity.Criterion, expected string) Condition[string] {
	return textCondition(scope, c, entity.MatchEquals, expected)
}

func TextContains(scope ports.Searcher, c entity.Criterion, expected string) Condition[string] {
	return textCondition(scope, c, entity.MatchContains, expected)
}

func textCondition(scope ports.Searcher, c entity.Criterion, mode entity.Match, expected string) Condition[string] {
	return Condition[string]{
		Name: fmt.Sprintf("text(%s) %s %q", c, mode, expected),
		Check: func(ctx context.Context) (string, bool, error) {
			el, ok, err := Present(scope, c).Check(ctx)
			if err != nil || !ok {
				return "", false, err
			}

			text, err := el.Text(ctx)
			if err != nil {
				return "", false, err
			}

			text = strings.TrimSpace(text)

			return text, mode.Matches(text, expected), nil
		},
	}
}

func AttributeEquals(scope ports.Searcher, c entity.Criterion, name, expected string) Condition[string] {
	return attributeCondition(scope, c, name, entity.MatchEquals, expected)
}

func AttributeContains(scope ports.Searcher, c entity.Criterion, name, expected string) Condition[string] {
	return attributeCondition(scope, c, name, entity.MatchContains, expected)
}

func attributeCondition(scope ports.Searcher, c entity.Criterion, name string, mode entity.Match, expected string) Condition[string] {
	return Condition[string]{
		Name: fmt.Sprintf("attr(%s@%s) %s %q", c, name, mode, expected),
		Check: func(ctx context.Context) (string, bool, error) {
			el, ok, err := Present(scope, c).Check(ctx)
			if err != nil || !ok {
				return "", false, err
			}

			value, present, err := el.Attribute(ctx, name)
			if err != nil || !present {
				return "", false, err
			}

			value = strings.TrimSpace(value)

			return value, mode.Matches(value, expected), nil
		},
	}
}

func URLEquals(d ports.Driver, expected string) Condition[string] {
	return pageCondition("url", d.CurrentURL, entity.MatchEquals, expected)
}

func URLContains(d ports.Driver, expected string) Condition[string] {
	return pageCondition("url", d.CurrentURL, entity.MatchContains, expected)
}

func TitleEquals(d ports.Driver, expected string) Condition[string] {
	return pageCondition("title", d.Title, entity.MatchEquals, expected)
}

func TitleContains(d ports.Driver, expected string) Condition[string] {
	return pageCondition("title", d.Title, entity.MatchContains, expected)
}

func pageCondition(what string, read func(context.Context) (string, error), mode entity.Match, expected string) Condition[string] {
	return Condition[string]{
		Name: fmt.Sprintf("%s %s %q", what, mode, expected),
		Check: func(ctx context.Context) (string, bool, error) {
			v, err := read(ctx)
			if err != nil {
				return "", false, err
			}

			return v, mode.Matches(v, expected), nil
		},
	}
}

func CountEquals(scope ports.Searcher, c entity.Criterion, expected int) Condition[int] {
	return Condition[int]{
		Name: fmt.Sprintf("count(%s)=%d", c, expected),
		Check: func(ctx context.Context) (int, bool, error) {
			els, err := scope.FindElements(ctx, c)
			if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
				return 0, false, err
			}

			return len(els), len(els) == expected, nil
		},
	}
}

// AlertPresent yields the dialog message once a native dialog is open.
func AlertPresent(d ports.Driver) Condition[string] {
	return Condition[string]{
		Name: "alert_present",
		Check: func(ctx context.Context) (string, bool, error) {
			text, err := d.AlertText(ctx)
			if err != nil {
				if apperr.Is(err, apperr.CodeNoAlert) {
					return "", false, nil
				}

				return "", false, err
			}

			return text, true, nil
		},
	}
}

func displayed(ctx context.Context, scope ports.Searcher, c entity.Criterion) ([]ports.Element, error) {
	els, err := scope.FindElements(ctx, c)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, nil
		}

		return nil, err
	}

	shown := make([]ports.Element, 0, len(els))

	for _, el := range els {
		ok, err := el.IsDisplayed(ctx)
		if err != nil {
			return nil, err
		}

		if ok {
			shown = append(shown, el)
		}
	}

	return shown, nil
}
