package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitReturnsResult(t *testing.T) {
	tk := Go(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	got, err := tk.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Wait() = %d, want 42", got)
	}
}

func TestWaitReturnsError(t *testing.T) {
	want := errors.New("boom")
	tk := Go(context.Background(), func(context.Context) (string, error) {
		return "", want
	})

	if _, err := tk.Wait(context.Background()); !errors.Is(err, want) {
		t.Errorf("Wait() error = %v, want %v", err, want)
	}
}

func TestPoll(t *testing.T) {
	release := make(chan struct{})
	tk := Go(context.Background(), func(context.Context) ([]byte, error) {
		<-release
		return []byte{1, 2}, nil
	})

	if _, ok, _ := tk.Poll(); ok {
		t.Fatal("Poll() reported completion before the task finished")
	}

	close(release)
	<-tk.Done()

	got, ok, err := tk.Poll()
	if !ok || err != nil || len(got) != 2 {
		t.Errorf("Poll() = %v, %v, %v, want [1 2], true, nil", got, ok, err)
	}
}

func TestPollReturnsError(t *testing.T) {
	want := errors.New("boom")
	tk := Go(context.Background(), func(context.Context) (int, error) {
		return 0, want
	})
	<-tk.Done()

	if _, ok, err := tk.Poll(); !ok || !errors.Is(err, want) {
		t.Errorf("Poll() = %v, %v, want true, %v", ok, err, want)
	}
}

func TestWaitContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	tk := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := tk.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestPanicBecomesError(t *testing.T) {
	tk := Go(context.Background(), func(context.Context) (int, error) {
		panic("bad input")
	})

	if _, err := tk.Wait(context.Background()); err == nil {
		t.Error("Wait() expected error from panicking task")
	}
}
