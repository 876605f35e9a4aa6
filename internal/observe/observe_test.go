package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/dbhandler/internal/handler"
	"github.com/nerrad567/dbhandler/internal/infrastructure/config"
	"github.com/nerrad567/dbhandler/internal/infrastructure/database"
	"github.com/nerrad567/dbhandler/internal/infrastructure/logging"
)

type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	messages []message
	err      error
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.messages = append(p.messages, message{topic, payload, qos, retained})
	return p.err
}

type metric struct {
	database, kind string
	rows           int
	elapsed        time.Duration
	failed         bool
	at             time.Time
}

type fakeWriter struct {
	points []metric
}

func (w *fakeWriter) WriteStatementMetric(database, kind string, rows int, elapsed time.Duration, failed bool, at time.Time) {
	w.points = append(w.points, metric{database, kind, rows, elapsed, failed, at})
}

func bufferLogger() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewWriter(&buf, config.LoggingConfig{Level: "info"}, "test"), &buf
}

func TestJournal_ObserveStatement(t *testing.T) {
	pub := &fakePublisher{}
	log, _ := bufferLogger()
	j := NewJournal(pub, 1, log)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j.ObserveStatement(context.Background(), handler.Execution{
		Database:  "app.db",
		Statement: "SELECT * FROM nonexistent",
		Kind:      "SELECT",
		Rows:      0,
		Duration:  2500 * time.Microsecond,
		Err:       errors.New("no such table: nonexistent"),
		At:        at,
	})

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.topic != "dbhandler/journal/app.db" || msg.qos != 1 || msg.retained {
		t.Errorf("message = topic:%q qos:%d retained:%v", msg.topic, msg.qos, msg.retained)
	}

	var entry JournalEntry
	if err := json.Unmarshal(msg.payload, &entry); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, err := uuid.Parse(entry.ID); err != nil {
		t.Errorf("id %q is not a UUID: %v", entry.ID, err)
	}
	want := JournalEntry{
		ID:         entry.ID,
		Database:   "app.db",
		Statement:  "SELECT * FROM nonexistent",
		Kind:       "SELECT",
		DurationMS: 2.5,
		Error:      "no such table: nonexistent",
		Timestamp:  entry.Timestamp,
	}
	if !entry.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", entry.Timestamp, at)
	}
	if entry != want {
		t.Errorf("entry = %+v, want %+v", entry, want)
	}
}

func TestJournal_SuccessOmitsError(t *testing.T) {
	pub := &fakePublisher{}
	j := NewJournal(pub, 0, nil)

	j.ObserveStatement(context.Background(), handler.Execution{Database: "app.db", Statement: "SELECT 1", Kind: "SELECT", Rows: 1})

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if strings.Contains(string(pub.messages[0].payload), `"error"`) {
		t.Errorf("payload carries an error field: %s", pub.messages[0].payload)
	}
}

func TestJournal_UniqueIDs(t *testing.T) {
	pub := &fakePublisher{}
	j := NewJournal(pub, 0, nil)

	for i := 0; i < 3; i++ {
		j.ObserveStatement(context.Background(), handler.Execution{Database: "app.db"})
	}

	seen := make(map[string]bool)
	for _, msg := range pub.messages {
		var entry JournalEntry
		if err := json.Unmarshal(msg.payload, &entry); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if seen[entry.ID] {
			t.Errorf("duplicate id %s", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestJournal_PublishFailureIsLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("mqtt: client not connected")}
	log, buf := bufferLogger()
	j := NewJournal(pub, 1, log)

	j.ObserveStatement(context.Background(), handler.Execution{Database: "app.db", Statement: "SELECT 1"})

	want := "[WARNING]\t Journal publish failed topic=dbhandler/journal/app.db error=mqtt: client not connected\n"
	if got := buf.String(); got != want {
		t.Errorf("log = %q, want %q", got, want)
	}
}

func TestMetrics_ObserveStatement(t *testing.T) {
	w := &fakeWriter{}
	m := NewMetrics(w)
	at := time.Now()

	m.ObserveStatement(context.Background(), handler.Execution{
		Database: "app.db", Kind: "INSERT", Rows: 0, Duration: time.Millisecond, At: at,
	})
	m.ObserveStatement(context.Background(), handler.Execution{
		Database: "app.db", Kind: "SELECT", Err: errors.New("boom"), At: at,
	})

	want := []metric{
		{database: "app.db", kind: "INSERT", elapsed: time.Millisecond, at: at},
		{database: "app.db", kind: "SELECT", failed: true, at: at},
	}
	if len(w.points) != len(want) {
		t.Fatalf("wrote %d points, want %d", len(w.points), len(want))
	}
	for i := range want {
		if w.points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, w.points[i], want[i])
		}
	}
}

func TestObservers_WiredIntoHandler(t *testing.T) {
	pub := &fakePublisher{}
	w := &fakeWriter{}
	log, _ := bufferLogger()

	cfg := database.Config{Path: filepath.Join(t.TempDir(), "wired.db"), BusyTimeout: 5}
	h := handler.New(cfg, log, NewJournal(pub, 1, log), NewMetrics(w))
	if err := h.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	h.ExecuteQuery(ctx, "CREATE TABLE t (a, b)")
	h.Insert(ctx, "t", []string{"1", "2"}, []string{"a", "b"})
	h.Select(ctx, "t", []string{"a", "b"}, nil, false)
	h.ExecuteQuery(ctx, "SELECT * FROM nonexistent")

	if len(pub.messages) != 4 || len(w.points) != 4 {
		t.Fatalf("journal=%d metrics=%d, want 4 each", len(pub.messages), len(w.points))
	}

	kinds := make([]string, 0, len(w.points))
	for _, p := range w.points {
		kinds = append(kinds, p.kind)
		if p.database != "wired.db" {
			t.Errorf("database = %q, want wired.db", p.database)
		}
	}
	if got := strings.Join(kinds, ","); got != "CREATE,INSERT,SELECT,SELECT" {
		t.Errorf("kinds = %s", got)
	}
	if w.points[2].rows != 1 || w.points[2].failed {
		t.Errorf("select point = %+v, want 1 row ok", w.points[2])
	}
	if !w.points[3].failed {
		t.Error("failed statement not marked failed")
	}
}
