package bus

import (
	"context"
	"log"
	"sync"
)

// MessageBus carries player input to the gateway and rendered state back to
// the channels.
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage

	mu          sync.RWMutex
	subscribers map[string][]func(OutboundMessage)
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		Inbound:     make(chan InboundMessage, bufSize),
		Outbound:    make(chan OutboundMessage, bufSize),
		subscribers: make(map[string][]func(OutboundMessage)),
	}
}

// SubscribeOutbound registers fn for outbound messages addressed to channel.
func (b *MessageBus) SubscribeOutbound(channel string, fn func(OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = append(b.subscribers[channel], fn)
}

// DispatchOutbound delivers outbound messages until ctx is done, then
// delivers whatever is still queued.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-b.Outbound:
			b.deliver(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-b.Outbound:
					b.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (b *MessageBus) deliver(msg OutboundMessage) {
	b.mu.RLock()
	subs := b.subscribers[msg.Channel]
	b.mu.RUnlock()
	if len(subs) == 0 {
		log.Printf("[bus] no subscriber for channel %s", msg.Channel)
		return
	}
	for _, fn := range subs {
		fn(msg)
	}
}
