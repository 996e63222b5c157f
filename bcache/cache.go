package bcache

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ptt/boardd/pttbbs"
)

const DefaultReloadDelay = 500 * time.Millisecond

// Cache holds the current board snapshot. Readers never block; Reload swaps
// in a new snapshot as a whole.
type Cache struct {
	Path   string
	Logger *zap.Logger
	// ReloadDelay collapses bursts of file events into one reload.
	ReloadDelay time.Duration

	snap atomic.Pointer[Snapshot]
}

// New loads path and returns a cache serving it.
func New(path string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		Path:        path,
		Logger:      logger,
		ReloadDelay: DefaultReloadDelay,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStatic returns a cache that serves a fixed snapshot and cannot reload.
func NewStatic(s *Snapshot) *Cache {
	c := &Cache{Logger: zap.NewNop()}
	c.snap.Store(s)
	return c
}

func (c *Cache) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Reload re-reads the board file. On failure the previous snapshot stays.
func (c *Cache) Reload() error {
	s, err := Load(c.Path)
	if err != nil {
		return err
	}
	c.snap.Store(s)
	c.Logger.Info("board list loaded", zap.String("path", c.Path), zap.Int("boards", s.Len()))
	return nil
}

// Board implements the lookup side of query.Boards on the current snapshot.
func (c *Cache) Board(bid int) *pttbbs.BoardHeader {
	return c.Snapshot().Board(bid)
}

func (c *Cache) BoardID(name string) int {
	return c.Snapshot().BoardID(name)
}

func (c *Cache) Children(bid int) []int {
	return c.Snapshot().Children(bid)
}

// Watch reloads the board file whenever it changes, until ctx is done. The
// directory is watched instead of the file so replacements by rename are
// seen too.
func (c *Cache) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(c.Path)); err != nil {
		return err
	}
	name := filepath.Clean(c.Path)

	delay := c.ReloadDelay
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.Logger.Debug("board file changed", zap.Stringer("op", ev.Op))
			timer.Reset(delay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch board file", zap.Error(err))
		case <-timer.C:
			if err := c.Reload(); err != nil {
				c.Logger.Error("reload board file", zap.Error(err))
			}
		}
	}
}
