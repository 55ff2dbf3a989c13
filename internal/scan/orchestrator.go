package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"facereel/internal/store"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// DiscoverVideos walks root recursively and returns the sorted paths of all
// video files found under it.
func DiscoverVideos(root string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if videoExtensions[strings.ToLower(filepath.Ext(path))] {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk video directory: %w", err)
	}
	sort.Strings(videos)
	return videos, nil
}

// Orchestrator fans videos out across a worker pool and merges each finished
// video into the store as soon as its result arrives.
type Orchestrator struct {
	analyzer *Analyzer
	store    *store.Store
	workers  int
	logger   *slog.Logger
}

type Options struct {
	Force           bool // rescan videos that already have results
	ShowProgressBar bool
	OnProgress      func(current, total int, path string)
}

type Summary struct {
	Total     int
	Scanned   int
	Skipped   int
	Failed    int
	Cancelled bool
}

func NewOrchestrator(analyzer *Analyzer, st *store.Store, workers int, logger *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Orchestrator{
		analyzer: analyzer,
		store:    st,
		workers:  workers,
		logger:   logger,
	}
}

// DefaultWorkers caps the pool at four since each worker keeps a full ffmpeg
// decode pipeline busy.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

type scanOutcome struct {
	path      string
	result    *VideoResult
	err       error
	cancelled bool
}

// Run scans every video under root. Already scanned videos are skipped unless
// opts.Force is set. Cancelling ctx stops further videos from starting; the
// ones already decoding finish and are committed.
func (o *Orchestrator) Run(ctx context.Context, root string, opts Options) (*Summary, error) {
	videos, err := DiscoverVideos(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(videos)}

	var pending []string
	for _, path := range videos {
		if !opts.Force && o.store.Scanned(path) {
			summary.Skipped++
			continue
		}
		pending = append(pending, path)
	}

	if len(pending) == 0 {
		return summary, nil
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgressBar {
		bar = progressbar.NewOptions(len(pending),
			progressbar.OptionSetDescription(fmt.Sprintf("Scanning videos (%d workers)", o.workers)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("videos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	results := make(chan scanOutcome, len(pending))
	semaphore := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	dispatched := 0
	for _, path := range pending {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		dispatched++
		wg.Add(1)
		go func(p string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			// Videos still queued behind the semaphore are abandoned once
			// ctx is cancelled; only the ones already decoding finish, so
			// their results are not thrown away.
			if ctx.Err() != nil {
				results <- scanOutcome{path: p, cancelled: true}
				return
			}
			res, err := o.analyzer.ScanVideo(context.WithoutCancel(ctx), p)
			results <- scanOutcome{path: p, result: res, err: err}
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Merging is sequential so the store file stays consistent after every
	// single video.
	done := 0
	for outcome := range results {
		done++
		if bar != nil {
			bar.Add(1)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(pending), outcome.path)
		}

		if outcome.cancelled {
			summary.Cancelled = true
			summary.Skipped++
			continue
		}

		if outcome.err != nil {
			summary.Failed++
			if o.logger != nil {
				o.logger.Warn("video skipped", "video", outcome.path, "error", outcome.err)
			}
			continue
		}

		o.store.MergeVideo(outcome.path, outcome.result.Meta, outcome.result.Events)
		if err := o.store.Save(); err != nil {
			if o.logger != nil {
				o.logger.Error("failed to persist scan results", "video", outcome.path, "error", err)
			}
		}
		summary.Scanned++
	}
	if bar != nil {
		fmt.Println()
	}

	summary.Skipped += len(pending) - dispatched
	return summary, nil
}
