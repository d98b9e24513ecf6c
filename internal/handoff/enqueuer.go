package handoff

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// Enqueuer appends records to the inbox queue on behalf of the share command.
//
// It never opens the playlist store and does not check that the target playlist exists.
type Enqueuer struct {
	container *Container
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

// NewEnqueuer creates an Enqueuer writing into container.
func NewEnqueuer(container *Container, logger *log.Logger) *Enqueuer {
	return &Enqueuer{
		container: container,
		logger:    logger,
		now:       time.Now,
		newID:     shared.GenerateID,
	}
}

// Enqueue reads the queue, appends record and rewrites the queue.
//
// An unreadable queue is replaced by one holding only record. Missing id, type and date are filled in.
func (e *Enqueuer) Enqueue(record models.InboxRecord) error {
	return e.enqueue(e.complete(record))
}

func (e *Enqueuer) complete(record models.InboxRecord) models.InboxRecord {
	if record.ID == "" {
		record.ID = e.newID()
	}
	if record.Type == "" {
		record.Type = models.RecordAddItem
	}
	if record.Date.IsZero() {
		record.Date = e.now().UTC()
	}
	record.Label = strings.TrimSpace(record.Label)
	return record
}

func (e *Enqueuer) enqueue(record models.InboxRecord) error {
	records, err := e.container.ReadQueue()
	if err != nil {
		e.logger.Warn("inbox queue unreadable, starting a new one", "path", e.container.QueuePath(), "error", err)
		records = nil
	}

	records = append(records, record)
	if err := e.container.WriteQueue(records); err != nil {
		return err
	}

	e.logger.Debug("queued inbox record", "id", record.ID, "playlist", record.PlaylistID, "pending", len(records))
	return nil
}

// Share queues an addItem record for playlistID and returns it.
func (e *Enqueuer) Share(playlistID, label, rawURL string) (models.InboxRecord, error) {
	record := e.complete(models.InboxRecord{
		Type:       models.RecordAddItem,
		PlaylistID: playlistID,
		Label:      label,
		URL:        strings.TrimSpace(rawURL),
	})
	return record, e.enqueue(record)
}
