package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"ui-verbs/internal/browser/mock"
	"ui-verbs/internal/config"
	"ui-verbs/internal/entity"
	"ui-verbs/pkg/apperr"

	"go.uber.org/zap"
)

func TestNewLauncher(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{config.BackendPlaywright, "playwright", false},
		{config.BackendSelenium, "selenium", false},
		{config.BackendRod, "rod", false},
		{"cypress", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			l, err := NewLauncher(&config.DriverConfig{Backend: tt.backend}, zap.NewNop())
			if tt.wantErr {
				if !apperr.IsFatal(err) {
					t.Fatalf("error = %v, want a fatal fault", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("NewLauncher() error = %v", err)
			}

			if l.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", l.Name(), tt.want)
			}
		})
	}
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	d := mock.New(mock.El("go", "id=go"))
	s := NewSessionWith(&mock.Launcher{Driver: d}, 2*time.Second, zap.NewNop())

	if _, err := s.FindElement(ctx, entity.Criterion{By: entity.ByID, Value: "go"}); !apperr.Is(err, apperr.CodeSessionNotReady) {
		t.Fatalf("before Open error = %v, want session_not_ready", err)
	}

	if err := s.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !s.IsOpen() {
		t.Fatal("session should be open")
	}

	if d.ImplicitWait() != 2*time.Second {
		t.Errorf("implicit wait = %v, want 2s", d.ImplicitWait())
	}

	if _, err := s.FindElement(ctx, entity.Criterion{By: entity.ByID, Value: "go"}); err != nil {
		t.Errorf("FindElement() error = %v", err)
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !d.Closed() {
		t.Error("driver should be closed")
	}

	if err := s.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := s.Title(ctx); !apperr.IsFatal(err) {
		t.Errorf("after Close error = %v, want fatal", err)
	}
}

func TestSession_OpenFails(t *testing.T) {
	boom := apperr.WrapErrorWithReason("Open", apperr.CodeSessionNotReady, "browser_launch_failed")
	s := NewSessionWith(&mock.Launcher{Err: boom}, 0, zap.NewNop())

	err := s.Open(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Open() error = %v, want %v", err, boom)
	}

	if s.IsOpen() {
		t.Error("session should stay closed")
	}
}
