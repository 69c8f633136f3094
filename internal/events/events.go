// Package events provides the event bus that decouples table state,
// transfers and the rendering layer. Components receive a bus handle at
// construction time instead of reaching each other through a shared
// registry.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bucketops/bucketctl/internal/constants"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	// Table events
	EventRowsChanged      EventType = "rows_changed"
	EventRowsFiltered     EventType = "rows_filtered"
	EventRowsSorted       EventType = "rows_sorted"
	EventSelectionChanged EventType = "selection_changed"

	// Transfer events
	EventTransferStarted   EventType = "transfer_started"
	EventTransferProgress  EventType = "transfer_progress"
	EventTransferCompleted EventType = "transfer_completed"
	EventTransferFailed    EventType = "transfer_failed"

	// Notification is the toast analog: something the user should see.
	EventNotification EventType = "notification"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBase builds the embedded base for an event of the given type.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// TableEvent describes a change to an observable table: rows replaced,
// filtered, sorted, or the selection toggled.
type TableEvent struct {
	BaseEvent
	Table    string // table identity: "buckets" or "files"
	Total    int    // rows held
	Visible  int    // rows passing the active criteria
	SortKey  string // active sort column, if any
	Selected int    // selected row count
}

// TransferEvent describes progress of an upload or download task.
type TransferEvent struct {
	BaseEvent
	TaskID   string  // unique task ID
	TaskType string  // "upload" or "download"
	Name     string  // display name (filename)
	Bucket   string
	Size     int64   // total bytes, -1 if unknown
	Progress float64 // 0.0 to 1.0
	Err      error   // set on EventTransferFailed
}

// NotificationEvent carries a user-facing message.
type NotificationEvent struct {
	BaseEvent
	Title   string
	Message string
	Failure bool
}

// Bus manages event subscriptions and publishing.
type Bus struct {
	subscribers map[EventType][]chan Event
	all         []chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
	dropped     atomic.Int64 // events dropped due to full buffers
}

// NewBus creates a new event bus with the specified buffer size.
// Zero or negative picks the default.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &Bus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
// A closed bus returns an already-closed channel.
func (b *Bus) Subscribe(eventType EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (b *Bus) SubscribeAll() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.all = append(b.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Never blocks: a subscriber
// with a full buffer misses the event and the drop counter increments.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
	for _, ch := range b.all {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns the number of events dropped due to full buffers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close shuts the bus down and closes all subscriber channels.
// Publishing after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, chans := range b.subscribers {
		for _, ch := range chans {
			close(ch)
		}
	}
	for _, ch := range b.all {
		close(ch)
	}
	b.subscribers = nil
	b.all = nil
}
