// Package batch drives high-volume face swap runs against a ComfyUI server:
// a bounded worker pool, per-item retry with exponential backoff, and a cost
// estimator for planning RunPod deployments.
package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/standeelab/standee/client"
)

const (
	// DefaultWorkers is the worker pool size used when none is configured.
	DefaultWorkers = 4
	// DefaultRetries is the per-item attempt count used when none is configured.
	DefaultRetries = 3
	// DefaultStyle is the style descriptor applied to every request.
	DefaultStyle = "professional illustration"

	outputSuffix = "_output.png"
)

// Generator produces one face-swapped image per request. *client.Client
// satisfies this; tests substitute fakes.
type Generator interface {
	GenerateFaceSwap(ctx context.Context, req client.SwapRequest) ([]byte, error)
}

// Result records the outcome of one batch item. Err is nil on success, and
// carries the last attempt's error once retries are exhausted.
type Result struct {
	SourcePath string
	OutputPath string
	Err        error
}

// Report aggregates a finished batch. It is built incrementally while the
// batch runs and must not be read until ProcessBatch returns.
type Report struct {
	Successful []Result
	Failed     []Result
	TotalTime  time.Duration
}

// ProgressFunc is called after every item completes, in completion order.
type ProgressFunc func(completed, total, succeeded, failed int)

// Options configures a Processor. Zero values fall back to the package
// defaults.
type Options struct {
	Workers int
	Retries int
	Style   string
}

// Processor runs face swap requests in parallel with bounded concurrency and
// retries each failed item with exponential backoff before recording it as a
// failure.
type Processor struct {
	gen     Generator
	workers int
	retries int
	style   string
	sleep   func(time.Duration) // swapped out in tests
}

func NewProcessor(gen Generator, opts Options) *Processor {
	retv := &Processor{
		gen:     gen,
		workers: opts.Workers,
		retries: opts.Retries,
		style:   opts.Style,
		sleep:   time.Sleep,
	}
	if retv.workers <= 0 {
		retv.workers = DefaultWorkers
	}
	if retv.retries <= 0 {
		retv.retries = DefaultRetries
	}
	if retv.style == "" {
		retv.style = DefaultStyle
	}
	return retv
}

// ProcessOne runs a single request to completion, retrying transport and
// timeout failures. After failed attempt i it sleeps 2^i seconds before the
// next try; the last attempt's error is returned in the Result.
func (p *Processor) ProcessOne(ctx context.Context, req client.SwapRequest) Result {
	var lastErr error
	for attempt := 0; attempt < p.retries; attempt++ {
		_, err := p.gen.GenerateFaceSwap(ctx, req)
		if err == nil {
			return Result{SourcePath: req.SourcePath, OutputPath: req.OutputPath}
		}
		lastErr = err

		// a completed workflow with no image output will not change on retry
		if errors.Is(err, client.ErrNoOutput) {
			break
		}
		if attempt < p.retries-1 {
			p.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return Result{SourcePath: req.SourcePath, OutputPath: req.OutputPath, Err: lastErr}
}

// ProcessBatch swaps every source face onto the single target reference,
// writing results into outputDir as "<source stem>_output.png". Items run on
// a fixed pool of workers; onProgress (optional) is invoked after each
// completion, serialized, in completion order.
func (p *Processor) ProcessBatch(ctx context.Context, sources []string, target, outputDir string, styleStrength float64, onProgress ProgressFunc) (*Report, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	requests := make([]client.SwapRequest, 0, len(sources))
	for _, source := range sources {
		stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		requests = append(requests, client.SwapRequest{
			SourcePath:    source,
			TargetPath:    target,
			OutputPath:    filepath.Join(outputDir, stem+outputSuffix),
			StyleStrength: styleStrength,
			Style:         p.style,
		})
	}

	report := &Report{}
	start := time.Now()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex // guards report and completed
		completed int
	)

	tasks := make(chan client.SwapRequest)
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range tasks {
				res := p.ProcessOne(ctx, req)

				mu.Lock()
				completed++
				if res.Err == nil {
					report.Successful = append(report.Successful, res)
				} else {
					report.Failed = append(report.Failed, res)
				}
				if onProgress != nil {
					onProgress(completed, len(requests), len(report.Successful), len(report.Failed))
				}
				mu.Unlock()
			}
		}()
	}

	for _, req := range requests {
		tasks <- req
	}
	close(tasks)
	wg.Wait()

	report.TotalTime = time.Since(start)
	return report, nil
}
