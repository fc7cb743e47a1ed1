// Package registry holds processed-file metadata and extracted data in
// memory, independent of any single request, with time-based expiry.
package registry

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roknskapar/pdf-processor/internal/api/metrics"
	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

const (
	// Entries older than this are purged together with their temp files.
	defaultRetention = 6 * time.Hour
	// How often the background sweep wakes up.
	defaultSweepInterval = time.Hour
)

// Options configures a Registry. Zero values select production defaults;
// tests inject their own clock and file remover.
type Options struct {
	Retention     time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
	Remove        func(path string) error
	Logger        zerolog.Logger
}

// Registry is the transient store of processed files. A single mutex guards
// the entry map; all mutation goes through it. The background sweep started
// by Start may race with in-flight reads, so callers must tolerate an entry
// disappearing between List and Get.
type Registry struct {
	mu      sync.Mutex
	entries map[string]domain.ProcessedFile

	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	remove    func(string) error
	log       zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options) *Registry {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Remove == nil {
		opts.Remove = os.Remove
	}
	return &Registry{
		entries:   make(map[string]domain.ProcessedFile),
		retention: opts.Retention,
		interval:  opts.SweepInterval,
		now:       opts.Now,
		remove:    opts.Remove,
		log:       opts.Logger,
	}
}

// Start launches the background sweep goroutine. It stops when ctx is
// cancelled or Close is called.
func (r *Registry) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				swept := r.SweepExpired(r.now())
				if swept > 0 {
					r.log.Info().Int("count", swept).Msg("swept expired files")
				}
			}
		}
	}()
}

// Close stops the sweeper and unconditionally purges every remaining entry
// and its temp file.
func (r *Registry) Close() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
	r.Clear()
}

// Add inserts the entry. Ids are globally unique per call, so a collision is
// not user-observable; the insert is simply a no-op.
func (r *Registry) Add(file domain.ProcessedFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[file.ID]; exists {
		return
	}
	r.entries[file.ID] = file
	metrics.RegistryEntries.Set(float64(len(r.entries)))
}

func (r *Registry) Get(id string) (domain.ProcessedFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.entries[id]
	return file, ok
}

// List returns a snapshot of all current entries in arbitrary order.
func (r *Registry) List() []domain.ProcessedFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := make([]domain.ProcessedFile, 0, len(r.entries))
	for _, f := range r.entries {
		files = append(files, f)
	}
	return files
}

// Clear deletes every referenced temp file, then empties the registry.
// Individual deletion failures are logged and do not abort the rest.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.entries {
		r.removeFile(f.FilePath)
	}
	r.entries = make(map[string]domain.ProcessedFile)
	metrics.RegistryEntries.Set(0)
}

// SweepExpired removes every entry whose age at now exceeds the retention
// window, deleting its temp file, and reports how many were removed.
func (r *Registry) SweepExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	swept := 0
	for id, f := range r.entries {
		if now.Sub(f.ProcessedTime) <= r.retention {
			continue
		}
		r.removeFile(f.FilePath)
		delete(r.entries, id)
		swept++
	}
	if swept > 0 {
		metrics.FilesSweptTotal.Add(float64(swept))
		metrics.RegistryEntries.Set(float64(len(r.entries)))
	}
	return swept
}

func (r *Registry) removeFile(path string) {
	if err := r.remove(path); err != nil && !os.IsNotExist(err) {
		r.log.Error().Err(err).Str("path", path).Msg("error deleting temp file")
	}
}
