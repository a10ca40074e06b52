package interrupt

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestRegister_SignalCancelsContext(t *testing.T) {
	ctx, cancel := Register(context.Background())
	defer cancel()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal("failed to create a SIGINT signal")
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("context was not canceled after SIGINT")
	}
}

func TestRegister_CancelFuncCancelsContext(t *testing.T) {
	ctx, cancel := Register(context.Background())
	cancel()
	if !IsCancelled(ctx) {
		t.Errorf("context was not canceled by its cancel func")
	}
}

func TestIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if IsCancelled(ctx) {
		t.Fatal("context was not canceled but func returned true")
	}
	cancel()
	if !IsCancelled(ctx) {
		t.Fatalf("context was canceled but func returned false")
	}
}
