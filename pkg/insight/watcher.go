package insight

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ethanbaker/soundscript/pkg/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// PromptWatcher reloads a client's prompts when the override file changes
type PromptWatcher struct {
	path    string
	client  *Client
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	done    chan struct{}
}

// WatchPrompts starts watching the override file at path. The parent
// directory is watched so editors that replace the file are also seen
func WatchPrompts(ctx context.Context, path string, client *Client) (*PromptWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve prompts path: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	w := &PromptWatcher{
		path:    absPath,
		client:  client,
		watcher: watcher,
		logger:  utils.Component("insight"),
		done:    make(chan struct{}),
	}

	go w.run(ctx)

	return w, nil
}

func (w *PromptWatcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("[INSIGHT]: prompt watcher error")
		}
	}
}

// reload swaps in the file's prompts, keeping the current ones when the file
// is unreadable or invalid
func (w *PromptWatcher) reload() {
	prompts, err := LoadPrompts(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("[INSIGHT]: keeping previous prompts")
		return
	}

	w.client.SetPrompts(prompts)
	w.logger.Info().Str("path", w.path).Msg("[INSIGHT]: prompts reloaded")
}

// Stop closes the watcher and waits for the loop to exit
func (w *PromptWatcher) Stop() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
