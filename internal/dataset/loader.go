package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Loader loads a dataset on first use and serves the same read-only copy
// afterwards. Concurrent first calls share a single load. Failed loads are
// not cached, so a missing file can be created and picked up by the next call.
type Loader struct {
	path string
	open func(path string) (*Dataset, error)

	group singleflight.Group
	mu    sync.RWMutex
	ds    *Dataset
}

// NewLoader creates a Loader for the dataset at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path, open: Open}
}

// Path returns the dataset path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns the loaded dataset, loading it if needed.
func (l *Loader) Get(ctx context.Context) (*Dataset, error) {
	l.mu.RLock()
	ds := l.ds
	l.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	ch := l.group.DoChan(l.path, func() (any, error) {
		l.mu.RLock()
		cached := l.ds
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		start := time.Now()
		loaded, err := l.open(l.path)
		if err != nil {
			log.Warn().
				Str("component", "dataset").
				Str("path", l.path).
				Err(err).
				Msg("dataset load failed")
			return nil, err
		}
		log.Info().
			Str("component", "dataset").
			Str("path", l.path).
			Int("records", loaded.Len()).
			Dur("took", time.Since(start)).
			Msg("dataset loaded")

		l.mu.Lock()
		l.ds = loaded
		l.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}
