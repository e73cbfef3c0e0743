package chimed

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSupervisorNoModules(t *testing.T) {
	s := Supervisor{Logger: zap.NewNop()}
	if err := s.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error with no modules")
	}
}

func TestSupervisorPropagatesModuleFailure(t *testing.T) {
	s := Supervisor{Logger: zap.NewNop()}
	modules := []ModuleRunner{
		{Name: "ok", Run: func(ctx context.Context) error { <-ctx.Done(); return nil }},
		{Name: "broken", Run: func(ctx context.Context) error { return errors.New("boom") }},
	}

	err := s.Run(context.Background(), modules)
	if err == nil || err.Error() != "broken: boom" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSupervisorShutsDownOnContextCancel(t *testing.T) {
	s := Supervisor{Logger: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, []ModuleRunner{
			{Name: "waiter", Run: func(ctx context.Context) error { <-ctx.Done(); return nil }},
		})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("supervisor did not stop")
	}
}
