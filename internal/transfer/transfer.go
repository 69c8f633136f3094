// Package transfer runs upload/download tasks with bounded concurrency,
// reporting progress on the event bus and as terminal progress bars.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/bucketops/bucketctl/internal/constants"
	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/logging"
)

// Task describes one upload or download.
type Task struct {
	ID     string // assigned by the runner when empty
	Type   string // "upload" or "download"
	Bucket string
	Name   string // display name (filename)
	Size   int64  // total bytes, -1 if unknown
}

// Func performs a single task. It receives the task with its final ID.
type Func func(ctx context.Context, task Task) error

// Runner executes tasks through a bounded worker pool.
type Runner struct {
	MaxConcurrent int
	Bus           *events.Bus
	Logger        *logging.Logger
}

// NewRunner builds a runner, clamping concurrency into the allowed range.
func NewRunner(maxConcurrent int, bus *events.Bus, logger *logging.Logger) *Runner {
	if maxConcurrent < constants.MinMaxConcurrent {
		maxConcurrent = constants.MinMaxConcurrent
	}
	if maxConcurrent > constants.MaxMaxConcurrent {
		maxConcurrent = constants.MaxMaxConcurrent
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Runner{MaxConcurrent: maxConcurrent, Bus: bus, Logger: logger}
}

// Run executes all tasks and returns an error joining every task failure.
// One failing task does not stop the others; cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, tasks []Task, fn Func) error {
	sem := make(chan struct{}, r.MaxConcurrent)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var errs []error

	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}

		select {
		case <-ctx.Done():
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()
		case sem <- struct{}{}:
			wg.Add(1)
			go func(task Task) {
				defer wg.Done()
				defer func() { <-sem }()

				r.publish(events.EventTransferStarted, task, nil)
				if err := fn(ctx, task); err != nil {
					r.Logger.Errorf("%s of %s failed: %v", task.Type, task.Name, err)
					r.publish(events.EventTransferFailed, task, err)
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s %s: %w", task.Type, task.Name, err))
					mu.Unlock()
					return
				}
				r.publish(events.EventTransferCompleted, task, nil)
			}(task)
		}
		if ctx.Err() != nil {
			break
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (r *Runner) publish(typ events.EventType, task Task, err error) {
	if r.Bus == nil {
		return
	}
	r.Bus.Publish(events.TransferEvent{
		BaseEvent: events.NewBase(typ),
		TaskID:    task.ID,
		TaskType:  task.Type,
		Name:      task.Name,
		Bucket:    task.Bucket,
		Size:      task.Size,
		Err:       err,
	})
}

// progressReadSeeker feeds a progress bar while staying seekable, so
// transports that rewind the body (checksum computation, retries) keep
// working. A rewind to the start resets the bar.
type progressReadSeeker struct {
	rs  io.ReadSeeker
	bar *progressbar.ProgressBar
}

// ProgressReadSeeker wraps a seekable body with a terminal progress bar.
// Upload bodies must stay seekable: a plain TeeReader hides the Seek
// method the S3 transport needs for unencrypted endpoints.
func ProgressReadSeeker(rs io.ReadSeeker, size int64, description string) io.ReadSeeker {
	return &progressReadSeeker{
		rs:  rs,
		bar: progressbar.DefaultBytes(size, description),
	}
}

func (p *progressReadSeeker) Read(b []byte) (int, error) {
	n, err := p.rs.Read(b)
	if n > 0 {
		_ = p.bar.Add(n)
	}
	return n, err
}

func (p *progressReadSeeker) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.rs.Seek(offset, whence)
	if err == nil && pos == 0 {
		p.bar.Reset()
	}
	return pos, err
}

// ProgressWriter wraps w with a terminal progress bar for downloads.
func ProgressWriter(w io.Writer, size int64, description string) io.Writer {
	bar := progressbar.DefaultBytes(size, description)
	return io.MultiWriter(w, bar)
}

// OpenWithSize opens a local file and reports its size for progress setup.
func OpenWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return f, info.Size(), nil
}
