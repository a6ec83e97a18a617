package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"ui-verbs/internal/browser/mock"
	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newWaiter(timeout time.Duration) (*Waiter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return New(zap.New(core), timeout, 5*time.Millisecond), logs
}

func counting(met func(n int) bool, fault func(n int) error) (Condition[int], *int) {
	calls := 0

	return Condition[int]{
		Name: "counting",
		Check: func(context.Context) (int, bool, error) {
			calls++
			if fault != nil {
				if err := fault(calls); err != nil {
					return 0, false, err
				}
			}

			return calls, met(calls), nil
		},
	}, &calls
}

func TestAwait_MetAfterPolls(t *testing.T) {
	w, _ := newWaiter(time.Second)
	cond, _ := counting(func(n int) bool { return n == 3 }, nil)

	v, ok, err := Await(context.Background(), w, cond, 0)
	if err != nil || !ok || v != 3 {
		t.Errorf("Await() = %d, %v, %v, want 3, true, nil", v, ok, err)
	}
}

func TestAwait_TimeoutDisengages(t *testing.T) {
	w, logs := newWaiter(time.Second)
	cond, _ := counting(func(int) bool { return false }, nil)

	start := time.Now()
	_, ok, err := Await(context.Background(), w, cond, 40*time.Millisecond)
	elapsed := time.Since(start)

	if ok || err != nil {
		t.Fatalf("Await() = %v, %v, want false, nil", ok, err)
	}
	if elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("elapsed %v, want about 40ms", elapsed)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("Condition not met before timeout").Len(); n != 1 {
		t.Errorf("timeout error lines = %d, want 1", n)
	}
}

func TestAwait_RecoverableFaultIsRetried(t *testing.T) {
	w, _ := newWaiter(time.Second)
	cond, calls := counting(func(int) bool { return true }, func(n int) error {
		if n < 3 {
			return mock.ErrStale()
		}

		return nil
	})

	_, ok, err := Await(context.Background(), w, cond, 0)
	if !ok || err != nil {
		t.Errorf("Await() = %v, %v, want true, nil", ok, err)
	}
	if *calls != 3 {
		t.Errorf("polls = %d, want 3", *calls)
	}
}

func TestAwait_UnclassifiedFaultIsRetried(t *testing.T) {
	w, logs := newWaiter(time.Second)
	cond, _ := counting(func(int) bool { return false }, func(int) error { return errors.New("boom") })

	_, ok, err := Await(context.Background(), w, cond, 20*time.Millisecond)
	if ok || err != nil {
		t.Errorf("Await() = %v, %v, want false, nil", ok, err)
	}

	entries := logs.FilterMessage("Condition not met before timeout").AllUntimed()
	if len(entries) != 1 || entries[0].ContextMap()["last_fault"] != "boom" {
		t.Errorf("timeout entry does not carry the last fault: %+v", entries)
	}
}

func TestAwait_FatalFaultEscalates(t *testing.T) {
	w, _ := newWaiter(time.Second)
	cond, calls := counting(func(int) bool { return false }, func(int) error { return mock.ErrSessionClosed() })

	_, ok, err := Await(context.Background(), w, cond, 0)
	if ok || !apperr.Is(err, apperr.CodeSessionNotReady) {
		t.Errorf("Await() = %v, %v, want false, session_not_ready", ok, err)
	}
	if *calls != 1 {
		t.Errorf("polls = %d, want 1", *calls)
	}
}

func TestAwait_CancelledContext(t *testing.T) {
	w, _ := newWaiter(time.Minute)
	cond, _ := counting(func(int) bool { return false }, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok, err := Await(ctx, w, cond, 0)
	if ok || err != nil {
		t.Errorf("Await() = %v, %v, want false, nil", ok, err)
	}
	if time.Since(start) > time.Second {
		t.Error("Await ignored context cancellation")
	}
}

func TestWithTimeoutLevel(t *testing.T) {
	w, logs := newWaiter(time.Second)
	quiet := w.WithTimeoutLevel(zapcore.WarnLevel)
	cond, _ := counting(func(int) bool { return false }, nil)

	_, _, _ = Await(context.Background(), quiet, cond, time.Millisecond)

	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 0 {
		t.Error("lowered waiter still logged at error level")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("Condition not met before timeout").Len() != 1 {
		t.Error("lowered waiter did not log the timeout at warn level")
	}
	if w.timeoutLevel != zapcore.ErrorLevel {
		t.Error("WithTimeoutLevel modified the receiver")
	}
}

func TestProbe(t *testing.T) {
	w, _ := newWaiter(time.Second)

	stale, calls := counting(func(int) bool { return true }, func(int) error { return mock.ErrStale() })
	if _, ok, err := Probe(context.Background(), w, stale); ok || err != nil {
		t.Errorf("Probe(stale) = %v, %v, want false, nil", ok, err)
	}
	if *calls != 1 {
		t.Errorf("Probe polled %d times, want 1", *calls)
	}

	closed, _ := counting(func(int) bool { return true }, func(int) error { return mock.ErrSessionClosed() })
	if _, _, err := Probe(context.Background(), w, closed); !apperr.IsFatal(err) {
		t.Errorf("Probe(closed) error = %v, want fatal", err)
	}
}

func TestConditions(t *testing.T) {
	hidden := mock.El("tip", "css=.tip")
	hidden.Hidden = true
	disabled := mock.El("send", "css=#send")
	disabled.Disabled = true
	checked := mock.El("opt", "id=opt")
	checked.Selected = true

	d := mock.New(
		mock.El("item-1", "css=li").WithText("one"),
		hidden,
		mock.El("item-2", "css=li").WithText("  two  "),
		disabled,
		checked,
		mock.El("link", "css=a").WithAttr("href", "/docs/intro"),
	)
	d.PageURL = "https://example.test/docs"
	d.PageTitle = "Docs - Example"

	li := entity.Criterion{By: entity.ByCSS, Value: "li"}
	ctx := context.Background()
	w, _ := newWaiter(time.Second)

	check := func(name string, ok bool, err error, want bool) {
		t.Helper()
		if err != nil {
			t.Errorf("%s: error = %v", name, err)
		}
		if ok != want {
			t.Errorf("%s = %v, want %v", name, ok, want)
		}
	}

	_, ok, err := Probe(ctx, w, Visible(d, li, 1))
	check("visible li[1]", ok, err, true)
	_, ok, err = Probe(ctx, w, Visible(d, li, 2))
	check("visible li[2]", ok, err, false)

	_, ok, err = Probe(ctx, w, Clickable(d, entity.Criterion{By: entity.ByCSS, Value: "#send"}))
	check("clickable disabled", ok, err, false)

	_, ok, err = Probe(ctx, w, InvisibleOrAbsent(d, entity.Criterion{By: entity.ByCSS, Value: ".tip"}))
	check("invisible hidden", ok, err, true)
	_, ok, err = Probe(ctx, w, InvisibleOrAbsent(d, entity.Criterion{By: entity.ByCSS, Value: ".gone"}))
	check("invisible absent", ok, err, true)
	_, ok, err = Probe(ctx, w, InvisibleOrAbsent(d, li))
	check("invisible shown", ok, err, false)

	_, ok, err = Probe(ctx, w, SelectionIs(d, entity.Criterion{By: entity.ByID, Value: "opt"}, true))
	check("selected", ok, err, true)

	_, ok, err = Probe(ctx, w, TextEquals(d, li, "one"))
	check("text equals", ok, err, true)
	_, ok, err = Probe(ctx, w, TextContains(d, li, "ne"))
	check("text contains", ok, err, true)

	a := entity.Criterion{By: entity.ByCSS, Value: "a"}
	_, ok, err = Probe(ctx, w, AttributeEquals(d, a, "href", "/docs/intro"))
	check("attribute equals", ok, err, true)
	_, ok, err = Probe(ctx, w, AttributeContains(d, a, "href", "/blog"))
	check("attribute contains", ok, err, false)

	_, ok, err = Probe(ctx, w, URLContains(d, "/docs"))
	check("url contains", ok, err, true)
	_, ok, err = Probe(ctx, w, URLEquals(d, "https://example.test"))
	check("url equals", ok, err, false)
	_, ok, err = Probe(ctx, w, TitleEquals(d, "Docs - Example"))
	check("title equals", ok, err, true)
	_, ok, err = Probe(ctx, w, TitleContains(d, "Blog"))
	check("title contains", ok, err, false)

	_, ok, err = Probe(ctx, w, CountEquals(d, li, 2))
	check("count", ok, err, true)

	_, ok, err = Probe(ctx, w, AlertPresent(d))
	check("no alert", ok, err, false)
	d.OpenAlert("Saved")
	text, ok, err := Probe(ctx, w, AlertPresent(d))
	check("alert", ok, err, true)
	if text != "Saved" {
		t.Errorf("alert text = %q, want Saved", text)
	}
}

func TestInvisibleOrAbsent_StaleCountsAsGone(t *testing.T) {
	spinner := mock.El("spinner", "css=.spinner").Fail(mock.OpState, mock.ErrStale())
	d := mock.New(spinner)
	w, _ := newWaiter(time.Second)

	_, ok, err := Probe(context.Background(), w, InvisibleOrAbsent(d, entity.Criterion{By: entity.ByCSS, Value: ".spinner"}))
	if !ok || err != nil {
		t.Errorf("InvisibleOrAbsent(stale) = %v, %v, want true, nil", ok, err)
	}
}
