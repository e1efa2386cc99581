package candidates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"qbank/internal/core/domain"
	"qbank/internal/core/ports/driven"
	"qbank/internal/logger"
	"qbank/internal/textproc"
)

// WatchSource streams candidates from text files dropped into a
// directory. It never returns io.EOF; it ends only through context
// cancellation.
type WatchSource struct {
	watcher *fsnotify.Watcher
	out     chan domain.Candidate

	// done unblocks a producer parked on a full out channel; without
	// it Close could not stop the loop mid-file.
	done      chan struct{}
	closeOnce sync.Once
}

var _ driven.CandidateSource = (*WatchSource)(nil)

// NewWatch starts watching dir for new .txt files. Files already
// present when the watch starts are not processed; the source picks
// up only what arrives afterwards.
func NewWatch(dir string) (*WatchSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	s := &WatchSource{
		watcher: watcher,
		out:     make(chan domain.Candidate, 64),
		done:    make(chan struct{}),
	}
	go s.loop()

	logger.Info("watching %s for new question files", dir)
	return s, nil
}

// Close stops the watcher and releases a blocked producer.
func (s *WatchSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.watcher.Close()
}

// Next blocks until a candidate arrives or ctx is done.
func (s *WatchSource) Next(ctx context.Context) (domain.Candidate, error) {
	select {
	case c, ok := <-s.out:
		if !ok {
			return domain.Candidate{}, fmt.Errorf("watch source closed")
		}
		return c, nil
	case <-ctx.Done():
		return domain.Candidate{}, ctx.Err()
	}
}

func (s *WatchSource) loop() {
	defer close(s.out)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			// Write as well as Create: editors and copies often emit
			// Create before the content lands.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".txt" {
				continue
			}
			s.ingestFile(event.Name)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

func (s *WatchSource) ingestFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return
	}

	extracted := textproc.Extract(string(data), path)
	logger.Debug("picked up %s: %d candidates", path, len(extracted))
	for _, c := range extracted {
		select {
		case s.out <- c:
		case <-s.done:
			return
		}
	}
}
