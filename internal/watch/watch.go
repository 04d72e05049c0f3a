// Package watch regenerates avatars when their input files change.
package watch

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/batch"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 250 * time.Millisecond

// ErrClosed is returned by Run on a closed watcher.
var ErrClosed = errors.New("watcher already closed")

// Options configures a Watcher.
type Options struct {
	batch.Options

	// Debounce is how long a file must stay quiet before it is processed.
	// Editors and the output collaborator often write a file in several
	// steps.
	Debounce time.Duration

	// OnItem is called after each regeneration.
	OnItem func(item batch.Item)
}

// Watcher watches one directory (non-recursively).
type Watcher struct {
	dir  string
	gen  batch.Generator
	opts Options
	log  *zap.Logger

	fsnotify *fsnotify.Watcher
	isClosed bool
}

// New starts watching dir.
func New(dir string, gen batch.Generator, opts Options) (*Watcher, error) {
	if opts.OutputDir != "" {
		if err := batch.CheckDirs(dir, opts.OutputDir); err != nil {
			return nil, err
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}

	return &Watcher{
		dir:      dir,
		gen:      gen,
		opts:     opts,
		log:      log.With(zap.String("dir", dir)),
		fsnotify: fsWatch,
	}, nil
}

// Run processes change events until ctx is cancelled. Regenerations run one
// at a time on the calling goroutine. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	if w.isClosed {
		return ErrClosed
	}
	defer w.Close()

	done := make(chan struct{})
	defer close(done)

	fire := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	w.log.Info("watching for face inputs", zap.Duration("debounce", w.opts.Debounce))
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			input := batch.InputFor(e.Name)
			if input == "" {
				continue
			}
			if t, ok := timers[input]; ok {
				t.Stop()
			}
			timers[input] = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case fire <- input:
				case <-done:
				}
			})

		case input := <-fire:
			delete(timers, input)
			w.regenerate(ctx, input)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) regenerate(ctx context.Context, input string) {
	// A sibling may change before its input exists.
	if _, err := os.Stat(input); err != nil {
		w.log.Debug("skipping change without input", zap.String("input", input))
		return
	}

	item := batch.Process(ctx, w.gen, input, w.opts.Options)
	if item.Err != nil {
		w.log.Warn("regeneration failed", zap.String("input", input), zap.Error(item.Err))
	} else {
		w.log.Info("avatar regenerated",
			zap.String("input", input),
			zap.String("glb", item.Output.GLB),
			zap.Duration("took", item.Duration))
	}
	if w.opts.OnItem != nil {
		w.opts.OnItem(item)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	return w.fsnotify.Close()
}
