package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/config"
)

// ChannelManager owns the hosts a gateway serves players through and routes
// rendered boards back to the host a session came from.
type ChannelManager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
}

// NewChannelManager builds every host enabled in cfg. Hosts registered later
// (the terminal) need no config entry.
func NewChannelManager(cfg config.ChannelsConfig, gwCfg config.GatewayConfig, b *bus.MessageBus) (*ChannelManager, error) {
	m := &ChannelManager{channels: make(map[string]Channel), bus: b}

	if cfg.Telegram.Enabled {
		tg, err := NewTelegramChannel(cfg.Telegram, b)
		if err != nil {
			return nil, fmt.Errorf("init telegram channel: %w", err)
		}
		m.Register(tg)
	}
	if cfg.WebUI.Enabled {
		web, err := NewWebUIChannel(cfg.WebUI, gwCfg, b)
		if err != nil {
			return nil, fmt.Errorf("init webui channel: %w", err)
		}
		m.Register(web)
	}
	return m, nil
}

// Register adds ch and subscribes it to boards addressed to its name.
func (m *ChannelManager) Register(ch Channel) {
	name := ch.Name()
	m.channels[name] = ch
	m.bus.SubscribeOutbound(name, func(msg bus.OutboundMessage) {
		if err := ch.Send(msg); err != nil {
			log.Printf("[channel-mgr] board for %s:%s not delivered: %v", name, msg.ChatID, err)
		}
	})
}

// StartAll starts hosts in name order. Every host is attempted; the failures
// come back joined.
func (m *ChannelManager) StartAll(ctx context.Context) error {
	var errs []error
	for _, name := range m.EnabledChannels() {
		log.Printf("[channel-mgr] starting %s", name)
		if err := m.channels[name].Start(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// StopAll stops hosts in reverse name order. Stop failures are only logged so
// shutdown always reaches every host.
func (m *ChannelManager) StopAll() error {
	names := m.EnabledChannels()
	slices.Reverse(names)
	for _, name := range names {
		log.Printf("[channel-mgr] stopping %s", name)
		if err := m.channels[name].Stop(); err != nil {
			log.Printf("[channel-mgr] error stopping %s: %v", name, err)
		}
	}
	return nil
}

// EnabledChannels returns the registered host names, sorted.
func (m *ChannelManager) EnabledChannels() []string {
	return slices.Sorted(maps.Keys(m.channels))
}
