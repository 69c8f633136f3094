package transfer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bucketops/bucketctl/internal/events"
)

func TestRunExecutesAllTasks(t *testing.T) {
	r := NewRunner(3, nil, nil)

	var count atomic.Int64
	tasks := []Task{
		{Type: "upload", Name: "a"},
		{Type: "upload", Name: "b"},
		{Type: "upload", Name: "c"},
	}

	err := r.Run(context.Background(), tasks, func(ctx context.Context, task Task) error {
		if task.ID == "" {
			t.Error("task ID not assigned")
		}
		count.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count.Load() != 3 {
		t.Errorf("ran %d tasks, want 3", count.Load())
	}
}

func TestRunContinuesOnError(t *testing.T) {
	r := NewRunner(1, nil, nil)

	var count atomic.Int64
	boom := errors.New("boom")
	tasks := []Task{
		{Type: "download", Name: "bad"},
		{Type: "download", Name: "good"},
	}

	err := r.Run(context.Background(), tasks, func(ctx context.Context, task Task) error {
		count.Add(1)
		if task.Name == "bad" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped boom", err)
	}
	if count.Load() != 2 {
		t.Errorf("ran %d tasks, want 2 (continue past failure)", count.Load())
	}
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	r := NewRunner(2, nil, nil)

	var mu sync.Mutex
	var inFlight, maxInFlight int

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Type: "upload", Name: "t"}
	}

	err := r.Run(context.Background(), tasks, func(ctx context.Context, task Task) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if maxInFlight > 2 {
		t.Errorf("max in-flight = %d, want <= 2", maxInFlight)
	}
}

func TestRunPublishesEvents(t *testing.T) {
	bus := events.NewBus(32)
	defer bus.Close()
	completed := bus.Subscribe(events.EventTransferCompleted)
	failed := bus.Subscribe(events.EventTransferFailed)

	r := NewRunner(1, bus, nil)
	tasks := []Task{
		{Type: "upload", Name: "ok", Bucket: "reports"},
		{Type: "upload", Name: "bad", Bucket: "reports"},
	}

	_ = r.Run(context.Background(), tasks, func(ctx context.Context, task Task) error {
		if task.Name == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	select {
	case ev := <-completed:
		te := ev.(events.TransferEvent)
		if te.Name != "ok" || te.Bucket != "reports" {
			t.Errorf("completed event = %+v", te)
		}
	case <-time.After(time.Second):
		t.Fatal("no completed event")
	}

	select {
	case ev := <-failed:
		te := ev.(events.TransferEvent)
		if te.Name != "bad" || te.Err == nil {
			t.Errorf("failed event = %+v", te)
		}
	case <-time.After(time.Second):
		t.Fatal("no failed event")
	}
}

func TestRunCancelledContext(t *testing.T) {
	r := NewRunner(1, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, []Task{{Type: "upload", Name: "x"}}, func(ctx context.Context, task Task) error {
		return ctx.Err()
	})
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

// Upload bodies get rewound by the S3 transport for checksum computation;
// the progress wrapper must keep the underlying Seek reachable and replay
// the same bytes after a rewind.
func TestProgressReadSeekerRewind(t *testing.T) {
	payload := "hello world"
	rs := ProgressReadSeeker(strings.NewReader(payload), int64(len(payload)), "test")

	first, err := io.ReadAll(rs)
	if err != nil {
		t.Fatalf("first read error = %v", err)
	}

	pos, err := rs.Seek(0, io.SeekStart)
	if err != nil || pos != 0 {
		t.Fatalf("Seek(0, start) = %d, %v", pos, err)
	}

	second, err := io.ReadAll(rs)
	if err != nil {
		t.Fatalf("second read error = %v", err)
	}

	if string(first) != payload || string(second) != payload {
		t.Errorf("reads = %q, %q, want %q twice", first, second, payload)
	}
}

func TestNewRunnerClampsConcurrency(t *testing.T) {
	if r := NewRunner(0, nil, nil); r.MaxConcurrent < 1 {
		t.Errorf("MaxConcurrent = %d", r.MaxConcurrent)
	}
	if r := NewRunner(1000, nil, nil); r.MaxConcurrent > 10 {
		t.Errorf("MaxConcurrent = %d", r.MaxConcurrent)
	}
}
