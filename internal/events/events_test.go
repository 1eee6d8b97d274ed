package events

import (
	"testing"
	"time"
)

func TestMemoryLogger(t *testing.T) {
	l := NewMemoryLogger()

	err := l.LogEvent(Event{
		UserID:    "u1",
		CourseID:  "html",
		SessionID: "s1",
		EventType: TypeLessonStarted,
		Data:      map[string]any{"lesson_id": "l1"},
	})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := l.LogEvent(Event{UserID: "u1", EventType: TypeChallengeSkipped}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	got := l.Events()
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].EventType != TypeLessonStarted {
		t.Errorf("first event type = %q", got[0].EventType)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}

	byType := l.ByType(TypeChallengeSkipped)
	if len(byType) != 1 {
		t.Errorf("ByType = %d, want 1", len(byType))
	}
}

func TestMemoryLoggerRequiresType(t *testing.T) {
	l := NewMemoryLogger()
	if err := l.LogEvent(Event{UserID: "u1"}); err == nil {
		t.Error("expected error for missing event type")
	}
	if len(l.Events()) != 0 {
		t.Error("invalid event was stored")
	}
}

func TestMemoryLoggerKeepsExplicitTimestamp(t *testing.T) {
	l := NewMemoryLogger()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := l.LogEvent(Event{EventType: TypeCoursePurchased, CreatedAt: at}); err != nil {
		t.Fatal(err)
	}
	if got := l.Events()[0].CreatedAt; !got.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got, at)
	}
}

func TestNopLogger(t *testing.T) {
	if err := (NopLogger{}).LogEvent(Event{}); err != nil {
		t.Errorf("nop logger returned %v", err)
	}
}

func TestPostgresLoggerNilPool(t *testing.T) {
	var l *PostgresLogger
	if err := l.LogEvent(Event{EventType: TypeLessonStarted}); err == nil {
		t.Error("expected error from nil logger")
	}
	if err := NewPostgresLogger(nil).LogEvent(Event{EventType: TypeLessonStarted}); err == nil {
		t.Error("expected error from nil pool")
	}
}
