package scheduler

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestStartRegistersJob(t *testing.T) {
	s := New("0 21 * * *", zaptest.NewLogger(t))
	s.SetReportFunction(func(context.Context) error { return nil })
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()
	if !s.IsRunning() {
		t.Fatal("expected scheduler to be running")
	}
}

func TestEmptySpecDisables(t *testing.T) {
	s := New("", zaptest.NewLogger(t))
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("expected scheduler to stay idle")
	}
	s.Stop()
}

func TestStartErrors(t *testing.T) {
	s := New("0 21 * * *", zaptest.NewLogger(t))
	if err := s.Start(); err == nil {
		t.Fatal("expected error without report function")
	}

	s = New("not a cron spec", zaptest.NewLogger(t))
	s.SetReportFunction(func(context.Context) error { return nil })
	if err := s.Start(); err == nil {
		t.Fatal("expected error for bad spec")
	}
}

func TestRunLogsFailure(t *testing.T) {
	called := false
	s := New("0 21 * * *", zaptest.NewLogger(t))
	s.SetReportFunction(func(ctx context.Context) error {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected job context to carry a deadline")
		}
		return errors.New("boom")
	})
	s.run()
	if !called {
		t.Fatal("report function was not called")
	}
}
