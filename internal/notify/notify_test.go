package notify

import (
	"context"
	"errors"
	"testing"
)

type stubNotifier struct {
	events []Event
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, evt Event) error {
	s.events = append(s.events, evt)
	return s.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	a := &stubNotifier{}
	b := &stubNotifier{}
	f := Fanout{a, b}

	evt := Event{Title: "persist failed", Severity: SeverityError}
	if err := f.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("deliveries = %d, %d, want 1, 1", len(a.events), len(b.events))
	}
}

func TestFanoutContinuesPastFailure(t *testing.T) {
	a := &stubNotifier{err: errors.New("boom")}
	b := &stubNotifier{}
	f := Fanout{a, b}

	if err := f.Notify(context.Background(), Event{Title: "x"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(b.events) != 1 {
		t.Errorf("second notifier deliveries = %d, want 1", len(b.events))
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityError, "#d00000"},
		{SeverityWarning, "#ffaa00"},
		{SeveritySuccess, "#36a64f"},
		{SeverityInfo, "#439fe0"},
	}
	for _, tt := range tests {
		if got := tt.sev.Color(); got != tt.want {
			t.Errorf("Color(%s) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
