package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"jarvis/internal/domain"
)

// FileSource polls a directory for dropped audio files and offers each one
// to the sink exactly once. Useful for scripted testing without a
// microphone.
type FileSource struct {
	fs       afero.Fs
	dir      string
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	processed map[string]bool
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewFileSource(fs afero.Fs, dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		fs:        fs,
		dir:       dir,
		interval:  500 * time.Millisecond,
		logger:    logger,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(ctx context.Context, sink domain.UtteranceSink) error {
	if err := f.fs.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}

	f.done = make(chan struct{})
	f.wg.Add(1)
	go f.poll(ctx, sink)
	return nil
}

func (f *FileSource) Stop() error {
	if f.done != nil {
		close(f.done)
		f.wg.Wait()
	}
	return nil
}

func (f *FileSource) poll(ctx context.Context, sink domain.UtteranceSink) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
			if err := f.scanOnce(sink); err != nil {
				f.logger.Warn("scanning audio dir failed", "error", err)
			}
		}
	}
}

func (f *FileSource) scanOnce(sink domain.UtteranceSink) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch filepath.Ext(entry.Name()) {
		case ".wav", ".mp3", ".m4a", ".webm":
		default:
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := afero.ReadFile(f.fs, path)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		if err := f.fs.Rename(path, path+".processed"); err != nil {
			f.logger.Warn("marking file processed failed", "file", path, "error", err)
		}

		u := domain.Utterance{ID: uuid.NewString(), Audio: data, CapturedAt: time.Now()}
		if !sink.Offer(u) {
			f.logger.Warn("utterance dropped at the sink", "id", u.ID, "file", path)
		}
		f.logger.Info("loaded audio file", "file", path, "bytes", len(data))
	}

	return nil
}
