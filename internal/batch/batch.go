// Package batch generates avatars for many input files with a bounded pool
// of workers.
package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/output"
	"github.com/Faultbox/facegen/internal/pipeline"
)

// Generator produces one avatar. *pipeline.Service implements it.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Options configures Run.
type Options struct {
	Workers       int
	OutputDir     string // no files are written when empty
	WriteMetadata bool
	Logger        *zap.Logger

	// Save, if set, is called after the avatar has been written. An error
	// marks the item failed.
	Save func(ctx context.Context, item *Item) error

	// Progress is called once per finished item, from the collecting
	// goroutine.
	Progress func(item Item)
}

// Item is the outcome for one input.
type Item struct {
	Index    int
	Path     string
	Result   *pipeline.Result
	Output   output.Paths
	Err      error
	Duration time.Duration
}

// Summary totals a run.
type Summary struct {
	Items     []Item // in input order
	Succeeded int
	Failed    int
}

type task struct {
	index int
	path  string
}

// Run processes paths with at most opts.Workers concurrent generations.
// Failures are recorded per item and never stop the batch. When ctx is
// cancelled, unstarted items fail with ctx.Err().
func Run(ctx context.Context, gen Generator, paths []string, opts Options) Summary {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	tasks := make(chan task, workers)
	results := make(chan Item, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				item := Process(ctx, gen, t.path, opts)
				item.Index = t.index
				results <- item
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i, p := range paths {
			select {
			case tasks <- task{index: i, path: p}:
			case <-ctx.Done():
				for j := i; j < len(paths); j++ {
					results <- Item{Index: j, Path: paths[j], Err: ctx.Err()}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		// The feeder may still be reporting cancelled items; it finishes
		// before tasks closes, and workers exit only after that.
		close(results)
	}()

	sum := Summary{Items: make([]Item, len(paths))}
	for item := range results {
		sum.Items[item.Index] = item
		if item.Err != nil {
			sum.Failed++
			log.Warn("avatar failed", zap.String("input", item.Path), zap.Error(item.Err))
		} else {
			sum.Succeeded++
		}
		if opts.Progress != nil {
			opts.Progress(item)
		}
	}
	return sum
}

// Process generates, writes and saves the avatar for one input path.
func Process(ctx context.Context, gen Generator, path string, opts Options) (item Item) {
	item = Item{Path: path}
	start := time.Now()
	defer func() { item.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		item.Err = err
		return item
	}
	req, err := LoadRequest(path)
	if err != nil {
		item.Err = err
		return item
	}
	res, err := gen.Generate(ctx, req)
	if err != nil {
		item.Err = err
		return item
	}
	item.Result = res

	if opts.OutputDir != "" {
		paths, err := output.WriteAvatar(opts.OutputDir, output.NameFor(path), res, opts.WriteMetadata)
		if err != nil {
			item.Err = err
			return item
		}
		item.Output = paths
	}
	if opts.Save != nil {
		if err := opts.Save(ctx, &item); err != nil {
			item.Err = err
		}
	}
	return item
}
