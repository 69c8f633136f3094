// Package notify provides desktop notifications for long-running transfers.
// It uses github.com/gen2brain/beeep for cross-platform support; this is
// the CLI's analog of the web UI's toast messages.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/constants"
	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/logging"
)

// Notifier turns notification events into desktop notifications.
type Notifier struct {
	logger *logging.Logger
	cfg    config.NotificationConfig

	mu      sync.RWMutex
	enabled bool
}

// NewNotifier creates a notifier with the given configuration.
func NewNotifier(cfg config.NotificationConfig, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Notifier{
		logger:  logger,
		cfg:     cfg,
		enabled: cfg.Enabled,
	}
}

// SetEnabled enables or disables notifications at runtime.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Notify shows a desktop notification. Failures are logged, never fatal:
// a missing notification daemon must not break a transfer.
func (n *Notifier) Notify(title, message string) {
	n.mu.RLock()
	enabled := n.enabled
	n.mu.RUnlock()
	if !enabled {
		return
	}

	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Debugf("notification failed: %v", err)
	}
}

// Listen consumes transfer events from the bus and raises notifications
// for completions and failures, per configuration. Returns when the bus
// closes.
func (n *Notifier) Listen(bus *events.Bus) {
	n.Consume(bus.SubscribeAll())
}

// Consume drains an already-subscribed event channel. Callers that need
// the subscription established before events start flowing subscribe
// themselves and hand the channel over.
func (n *Notifier) Consume(ch <-chan events.Event) {
	for ev := range ch {
		switch e := ev.(type) {
		case events.TransferEvent:
			switch e.Type() {
			case events.EventTransferCompleted:
				if n.cfg.ShowTransferComplete {
					n.Notify(constants.AppName, e.TaskType+" complete: "+e.Name)
				}
			case events.EventTransferFailed:
				if n.cfg.ShowTransferFailed {
					n.Notify(constants.AppName, e.TaskType+" failed: "+e.Name)
				}
			}
		case events.NotificationEvent:
			n.Notify(e.Title, e.Message)
		}
	}
}
