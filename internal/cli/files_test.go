package cli

import (
	"testing"
	"time"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/events"
)

// The notifier must be joined before a transfer command returns, or the
// final completion notification races process exit.
func TestWatchTransfersDoneAfterBusClose(t *testing.T) {
	cfg := config.New()
	cfg.Notifications.Enabled = false // keep the desktop daemon out of tests

	bus := events.NewBus(8)
	done := watchTransfers(cfg, bus)

	// Publishing immediately after watchTransfers returns must not lose
	// the event: the subscription is established before it returns.
	bus.Publish(events.TransferEvent{
		BaseEvent: events.NewBase(events.EventTransferCompleted),
		Name:      "report.pdf",
		Bucket:    "reports",
	})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not finish after bus close")
	}
}
