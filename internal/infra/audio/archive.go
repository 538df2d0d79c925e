package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	wave "github.com/zenwerk/go-wave"
)

// Archive persists captured utterances as WAV files for later inspection.
// Archiving is best effort; a failed write never blocks or fails capture.
type Archive struct {
	fs         afero.Fs
	dir        string
	sampleRate int
	logger     *slog.Logger
}

func NewArchive(fs afero.Fs, dir string, sampleRate int, logger *slog.Logger) *Archive {
	return &Archive{fs: fs, dir: dir, sampleRate: sampleRate, logger: logger}
}

func (a *Archive) Save(id string, samples []int16) error {
	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	name := filepath.Join(a.dir, time.Now().Format("20060102-150405")+"-"+id+".wav")
	f, err := a.fs.Create(name)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           f,
		Channel:       1,
		SampleRate:    a.sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("creating wav writer: %w", err)
	}

	if _, err := writer.WriteSample16(samples); err != nil {
		writer.Close()
		return fmt.Errorf("writing samples: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing wav writer: %w", err)
	}

	a.logger.Debug("utterance archived", "file", name, "samples", len(samples))
	return nil
}
