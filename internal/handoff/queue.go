package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/linkreel/internal/models"
)

// ReadQueue returns the queued records in append order.
//
// A missing queue is empty. A queue that is not a JSON array returns an error, which callers treat as
// empty. Entries inside the array that fail to decode come back as zero records so the drainer can drop
// them without losing their neighbours.
func (c *Container) ReadQueue() ([]models.InboxRecord, error) {
	data, err := os.ReadFile(c.QueuePath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode queue: %w", err)
	}

	records := make([]models.InboxRecord, len(raw))
	for i, msg := range raw {
		var rec models.InboxRecord
		if err := json.Unmarshal(msg, &rec); err == nil {
			records[i] = rec
		}
	}
	return records, nil
}

// WriteQueue atomically replaces the queue. A nil or empty slice writes "[]".
func (c *Container) WriteQueue(records []models.InboxRecord) error {
	if records == nil {
		records = []models.InboxRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}
	if err := c.EnsureFolders(); err != nil {
		return err
	}
	return WriteFileAtomic(c.QueuePath(), data, 0o644)
}

// ClearQueue writes the canonical empty queue.
func (c *Container) ClearQueue() error {
	return c.WriteQueue(nil)
}
