package channel

import (
	"context"
	"slices"

	"github.com/stellarlinkco/aptname/internal/bus"
)

// Channel is a place players type names from.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundMessage) error
}

type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom []string
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string) BaseChannel {
	return BaseChannel{name: name, bus: b, allowFrom: allowFrom}
}

func (c *BaseChannel) Name() string { return c.name }

// IsAllowed reports whether senderID may play. An empty allow list admits
// everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	return slices.Contains(c.allowFrom, senderID)
}
