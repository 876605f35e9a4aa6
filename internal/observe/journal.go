package observe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/dbhandler/internal/handler"
	"github.com/nerrad567/dbhandler/internal/infrastructure/logging"
	"github.com/nerrad567/dbhandler/internal/infrastructure/mqtt"
)

// Publisher sends one MQTT message. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// JournalEntry is the JSON payload published for one statement.
type JournalEntry struct {
	ID         string    `json:"id"`
	Database   string    `json:"database"`
	Statement  string    `json:"statement"`
	Kind       string    `json:"kind"`
	Rows       int       `json:"rows"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Journal publishes executed statements to dbhandler/journal/<database>.
type Journal struct {
	pub Publisher
	qos byte
	log *logging.Logger
}

// NewJournal creates a Journal publishing at the given QoS. A nil log
// falls back to logging.Default.
func NewJournal(pub Publisher, qos byte, log *logging.Logger) *Journal {
	if log == nil {
		log = logging.Default()
	}
	return &Journal{pub: pub, qos: qos, log: log}
}

// ObserveStatement publishes e. Publish failures are logged at warning.
func (j *Journal) ObserveStatement(_ context.Context, e handler.Execution) {
	payload, err := json.Marshal(newJournalEntry(e))
	if err != nil {
		j.log.Warning("Journal entry not encoded", "error", err)
		return
	}

	topic := mqtt.Topics{}.Journal(e.Database)
	if err := j.pub.Publish(topic, payload, j.qos, false); err != nil {
		j.log.Warning("Journal publish failed", "topic", topic, "error", err)
	}
}

func newJournalEntry(e handler.Execution) JournalEntry {
	entry := JournalEntry{
		ID:         uuid.NewString(),
		Database:   e.Database,
		Statement:  e.Statement,
		Kind:       e.Kind,
		Rows:       e.Rows,
		DurationMS: float64(e.Duration) / float64(time.Millisecond),
		Timestamp:  e.At.UTC(),
	}
	if e.Err != nil {
		entry.Error = e.Err.Error()
	}
	return entry
}
