package gridterm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFeedLoop_DrainsReader(t *testing.T) {
	term := New(WithSize(5, 20))

	err := term.FeedLoop(context.Background(), strings.NewReader("hello\r\nworld"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := term.LineContent(0); got != "hello" {
		t.Errorf("line 0 = %q, want %q", got, "hello")
	}
	if got := term.LineContent(1); got != "world" {
		t.Errorf("line 1 = %q, want %q", got, "world")
	}
}

func TestFeedLoop_ContextCanceled(t *testing.T) {
	term := New(WithSize(5, 20))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never returns EOF; cancellation must end the loop
	err := term.FeedLoop(ctx, neverEOFReader{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFeedLoop_CancelDuringRead(t *testing.T) {
	term := New(WithSize(5, 20))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- term.FeedLoop(ctx, neverEOFReader{delay: time.Millisecond})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FeedLoop did not stop after cancellation")
	}
}

func TestFeedLoop_ReadErrorReported(t *testing.T) {
	sink := &errorSink{}
	term := New(WithSize(5, 20), WithErrorProvider(sink))

	readErr := errors.New("pty gone")
	err := term.FeedLoop(context.Background(), &failingReader{data: "ok", err: readErr})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error returned, got %v", err)
	}

	// Data before the failure still reached the terminal
	if got := term.LineContent(0); got != "ok" {
		t.Errorf("line 0 = %q, want %q", got, "ok")
	}

	if len(sink.errs) != 1 || !errors.Is(sink.errs[0], readErr) {
		t.Errorf("expected error provider to receive the read error, got %v", sink.errs)
	}
}

func TestFeedLoop_RateLimited(t *testing.T) {
	term := New(WithSize(5, 20))

	// Generous rate so the test stays fast; this exercises the limiter
	// path, not the throttle timing
	err := term.FeedLoop(context.Background(), strings.NewReader("abc"),
		WithFeedRateLimit(1<<20, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := term.LineContent(0); got != "abc" {
		t.Errorf("line 0 = %q, want %q", got, "abc")
	}
}

func TestFeedLoop_BufferCappedByBurst(t *testing.T) {
	term := New(WithSize(5, 80))

	// Burst smaller than the requested buffer forces short reads; the
	// content must still arrive intact
	err := term.FeedLoop(context.Background(), strings.NewReader("0123456789"),
		WithFeedBufferSize(64),
		WithFeedRateLimit(1<<20, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := term.LineContent(0); got != "0123456789" {
		t.Errorf("line 0 = %q, want %q", got, "0123456789")
	}
}

// neverEOFReader blocks briefly and returns no data, simulating an idle PTY.
type neverEOFReader struct {
	delay time.Duration
}

func (r neverEOFReader) Read(p []byte) (int, error) {
	d := r.delay
	if d == 0 {
		d = time.Millisecond
	}
	time.Sleep(d)
	return 0, nil
}

// failingReader yields its data once, then fails.
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	n := copy(p, r.data)
	return n, nil
}

type errorSink struct {
	errs []error
}

func (s *errorSink) HandleError(err error) {
	s.errs = append(s.errs, err)
}
