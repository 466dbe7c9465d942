package main

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
)

type sentMail struct {
	addr string
	from string
	to   []string
	body string
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo string
	done   chan struct{}
}

func (f *fakeTransport) send(addr string, _ sasl.Client, from string, to []string, r io.Reader) error {
	body, _ := io.ReadAll(r)

	f.mu.Lock()
	f.sent = append(f.sent, sentMail{addr: addr, from: from, to: to, body: string(body)})
	f.mu.Unlock()

	if f.done != nil {
		f.done <- struct{}{}
	}
	if len(to) == 1 && to[0] == f.failTo {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func newTestNotifier(ft *fakeTransport) *MailNotifier {
	n := NewMailNotifier(SMTPConfig{
		Enabled:   true,
		Host:      "smtp.example.com",
		Port:      "587",
		FromEmail: "wedding@example.com",
		Notify:    "groom@example.com, bride@example.com",
	}, time.UTC)
	n.send = ft.send
	return n
}

func TestSendMailToEveryRecipient(t *testing.T) {
	ft := &fakeTransport{failTo: "groom@example.com"}
	n := newTestNotifier(ft)

	err := n.SendMail("축하합니다", "body text")
	if err == nil {
		t.Error("expected the failed recipient to be reported")
	}

	if len(ft.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(ft.sent))
	}
	for _, m := range ft.sent {
		if m.addr != "smtp.example.com:587" || m.from != "wedding@example.com" {
			t.Errorf("unexpected envelope %+v", m)
		}
		if !strings.Contains(m.body, "Subject: =?utf-8?q?") {
			t.Errorf("subject not encoded: %q", m.body)
		}
		if !strings.HasSuffix(m.body, "body text") {
			t.Errorf("body missing: %q", m.body)
		}
	}
	if ft.sent[1].to[0] != "bride@example.com" {
		t.Errorf("second recipient = %v", ft.sent[1].to)
	}
}

func TestNewAttendanceSendsInBackground(t *testing.T) {
	ft := &fakeTransport{done: make(chan struct{}, 2)}
	n := newTestNotifier(ft)

	n.NewAttendance(AttendanceRecord{
		Name:         "Bob",
		Side:         "신랑측",
		Count:        2,
		Meal:         "예정",
		RegisteredAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	})

	for i := 0; i < 2; i++ {
		select {
		case <-ft.done:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was not sent")
		}
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	if !strings.Contains(ft.sent[0].body, "Guests: 2") || !strings.Contains(ft.sent[0].body, "2026.01.01") {
		t.Errorf("unexpected body %q", ft.sent[0].body)
	}
}
