package handoff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/linkreel/internal/shared"
)

const (
	IndexFileName = "playlists_index.json"
	InboxDirName  = "Inbox"
	QueueFileName = "queue.json"
)

// Container resolves artifact paths under a shared root directory.
type Container struct {
	root string
}

// NewContainer returns a Container rooted at root; "~" is expanded.
func NewContainer(root string) *Container {
	return &Container{root: filepath.Clean(shared.ExpandHome(root))}
}

func (c *Container) Root() string      { return c.root }
func (c *Container) IndexPath() string { return filepath.Join(c.root, IndexFileName) }
func (c *Container) InboxDir() string  { return filepath.Join(c.root, InboxDirName) }
func (c *Container) QueuePath() string { return filepath.Join(c.InboxDir(), QueueFileName) }

// EnsureFolders creates the root and inbox directories if missing. It is safe to call repeatedly.
func (c *Container) EnsureFolders() error {
	if err := os.MkdirAll(c.InboxDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create shared folders: %w", err)
	}
	return nil
}
