package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the store whenever the persisted config file is rewritten,
// swapping in the new snapshot only when it parses and passes hard
// validation. Invalid or unreadable rewrites are logged and discarded; the
// last known-good configuration stays in effect.
//
// Watch blocks until ctx is cancelled. Run it in its own goroutine.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.path); err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove):
				// Editors and atomic writers replace the file via rename,
				// which kills the inode watch and delivers only this event.
				// Re-arm on the path, then load the replacement.
				_ = watcher.Remove(s.path)
				if err := s.rearm(watcher); err != nil {
					s.logger.Warn("config watch re-arm failed",
						zap.String("path", s.path), zap.Error(err))
					continue
				}
				s.reload()
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				s.reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// rearm re-establishes the path watch after a rename or remove. The
// replacement file may not be in place yet when the event arrives, so the
// add is retried briefly.
func (s *Store) rearm(watcher *fsnotify.Watcher) error {
	var err error
	for attempt := 0; attempt < 10; attempt++ {
		if err = watcher.Add(s.path); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return err
}

func (s *Store) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := readFile(s.path)
	if err != nil {
		s.logger.Warn("config reload read failed", zap.Error(err))
		return
	}
	cfg, err := parse(raw)
	if err != nil {
		s.logger.Warn("config reload parse failed", zap.Error(err))
		return
	}
	if report := cfg.Validate(); !report.Valid {
		s.logger.Warn("config reload rejected",
			zap.Strings("issues", report.Issues))
		return
	}

	s.current.Store(cfg)
	s.logger.Info("config reloaded", zap.String("path", s.path))
}
