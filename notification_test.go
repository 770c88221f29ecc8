package gridterm

import (
	"bytes"
	"sync"
	"testing"
)

// recordingNotifier captures delivered payloads for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	payloads   []*NotificationPayload
	queryReply string
}

func (n *recordingNotifier) Notify(payload *NotificationPayload) string {
	n.mu.Lock()
	n.payloads = append(n.payloads, payload)
	n.mu.Unlock()
	if payload.PayloadType == "?" {
		return n.queryReply
	}
	return ""
}

func (n *recordingNotifier) last() *NotificationPayload {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.payloads) == 0 {
		return nil
	}
	return n.payloads[len(n.payloads)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

func TestOSC9Notification(t *testing.T) {
	notifier := &recordingNotifier{}
	term := New(WithNotification(notifier))

	term.WriteString("\x1b]9;Build finished\x07")

	p := notifier.last()
	if p == nil {
		t.Fatal("expected a notification")
	}
	if p.PayloadType != "title" {
		t.Errorf("PayloadType = %q, want %q", p.PayloadType, "title")
	}
	if string(p.Data) != "Build finished" {
		t.Errorf("Data = %q, want %q", p.Data, "Build finished")
	}
	if !p.Done {
		t.Error("OSC 9 payloads are always final")
	}
}

func TestOSC99NotificationMetadata(t *testing.T) {
	notifier := &recordingNotifier{}
	term := New(WithNotification(notifier))

	term.WriteString("\x1b]99;i=deploy:p=body:c=1:w=5000:f=ci:t=alert:n=warning:g=cache-456:s=system:u=2:o=always:a=focus,report;All tests green\x1b\\")

	p := notifier.last()
	if p == nil {
		t.Fatal("expected a notification")
	}
	if p.ID != "deploy" {
		t.Errorf("ID = %q, want %q", p.ID, "deploy")
	}
	if p.PayloadType != "body" {
		t.Errorf("PayloadType = %q, want %q", p.PayloadType, "body")
	}
	if !p.TrackClose {
		t.Error("c=1 should set TrackClose")
	}
	if p.Timeout != 5000 {
		t.Errorf("Timeout = %d, want 5000", p.Timeout)
	}
	if p.AppName != "ci" || p.Type != "alert" {
		t.Errorf("AppName/Type = %q/%q", p.AppName, p.Type)
	}
	if p.IconName != "warning" || p.IconCacheID != "cache-456" {
		t.Errorf("IconName/IconCacheID = %q/%q", p.IconName, p.IconCacheID)
	}
	if p.Sound != "system" || p.Urgency != 2 || p.Occasion != "always" {
		t.Errorf("Sound/Urgency/Occasion = %q/%d/%q", p.Sound, p.Urgency, p.Occasion)
	}
	if len(p.Actions) != 2 || p.Actions[0] != "focus" || p.Actions[1] != "report" {
		t.Errorf("Actions = %v, want [focus report]", p.Actions)
	}
	if string(p.Data) != "All tests green" {
		t.Errorf("Data = %q, want %q", p.Data, "All tests green")
	}
}

func TestOSC99Base64Payload(t *testing.T) {
	notifier := &recordingNotifier{}
	term := New(WithNotification(notifier))

	// e=1 marks the payload as base64 ("hello")
	term.WriteString("\x1b]99;e=1;aGVsbG8=\x1b\\")

	p := notifier.last()
	if p == nil {
		t.Fatal("expected a notification")
	}
	if string(p.Data) != "hello" {
		t.Errorf("Data = %q, want %q", p.Data, "hello")
	}
}

func TestOSC99QueryReplyWritten(t *testing.T) {
	var out bytes.Buffer
	notifier := &recordingNotifier{queryReply: "\x1b]99;i=q;p=?\x1b\\"}
	term := New(WithNotification(notifier), WithResponse(&out))

	term.WriteString("\x1b]99;i=q:p=?;\x1b\\")

	if out.String() != notifier.queryReply {
		t.Errorf("response = %q, want %q", out.String(), notifier.queryReply)
	}
}

func TestNotificationProviderPlumbing(t *testing.T) {
	// The default provider swallows notifications without panicking.
	term := New()
	if term.NotificationProvider() == nil {
		t.Fatal("expected a default provider")
	}
	if got := term.NotificationProvider().Notify(&NotificationPayload{Data: []byte("x")}); got != "" {
		t.Errorf("NoopNotification reply = %q, want empty", got)
	}

	// Providers can be supplied up front or swapped at runtime.
	notifier := &recordingNotifier{}
	term = New(WithNotification(notifier))
	if term.NotificationProvider() != NotificationProvider(notifier) {
		t.Error("WithNotification did not install the provider")
	}

	replacement := &recordingNotifier{}
	term.SetNotificationProvider(replacement)
	if term.NotificationProvider() != NotificationProvider(replacement) {
		t.Error("SetNotificationProvider did not replace the provider")
	}

	// A nil provider must not panic on delivery.
	term.SetNotificationProvider(nil)
	term.WriteString("\x1b]9;dropped\x07")
}

func TestNotificationMiddlewareRewrite(t *testing.T) {
	notifier := &recordingNotifier{}
	var seenID string

	term := New(
		WithNotification(notifier),
		WithMiddleware(&Middleware{
			DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
				seenID = payload.ID
				rewritten := *payload
				rewritten.ID = "mw-" + payload.ID
				next(&rewritten)
			},
		}),
	)

	term.WriteString("\x1b]99;i=orig;hi\x1b\\")

	if seenID != "orig" {
		t.Errorf("middleware saw ID %q, want %q", seenID, "orig")
	}
	p := notifier.last()
	if p == nil || p.ID != "mw-orig" {
		t.Errorf("provider got %+v, want rewritten ID", p)
	}
}

func TestNotificationMiddlewareBlocks(t *testing.T) {
	notifier := &recordingNotifier{}
	term := New(
		WithNotification(notifier),
		WithMiddleware(&Middleware{
			DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
				// Swallow the notification.
			},
		}),
	)

	term.WriteString("\x1b]9;blocked\x07")

	if notifier.count() != 0 {
		t.Errorf("expected 0 deliveries, got %d", notifier.count())
	}
}

func TestMiddlewareMergeDesktopNotification(t *testing.T) {
	merged := 0

	mw1 := &Middleware{Bell: func(next func()) { next() }}
	mw2 := &Middleware{
		DesktopNotification: func(payload *NotificationPayload, next func(*NotificationPayload)) {
			merged++
			next(payload)
		},
	}
	mw1.Merge(mw2)

	notifier := &recordingNotifier{}
	term := New(WithNotification(notifier), WithMiddleware(mw1))
	term.WriteString("\x1b]9;merged\x07")

	if merged != 1 {
		t.Errorf("merged middleware fired %d times, want 1", merged)
	}
	if notifier.count() != 1 {
		t.Errorf("provider fired %d times, want 1", notifier.count())
	}
}

func TestDesktopNotificationConcurrent(t *testing.T) {
	notifier := &recordingNotifier{}
	term := New(WithNotification(notifier))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			term.DesktopNotification(&NotificationPayload{PayloadType: "title", Data: []byte("x")})
		}()
	}
	wg.Wait()

	if notifier.count() != 10 {
		t.Errorf("expected 10 deliveries, got %d", notifier.count())
	}
}
