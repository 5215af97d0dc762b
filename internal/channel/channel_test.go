package channel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/config"
)

func TestBaseChannel_Name(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch := NewBaseChannel("test", b, nil)
	if ch.Name() != "test" {
		t.Errorf("Name = %q, want test", ch.Name())
	}
}

func TestBaseChannel_IsAllowed_NoFilter(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch := NewBaseChannel("test", b, nil)
	if !ch.IsAllowed("anyone") {
		t.Error("should allow anyone when allowFrom is empty")
	}
}

func TestBaseChannel_IsAllowed_WithFilter(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch := NewBaseChannel("test", b, []string{"user1", "user2"})

	if !ch.IsAllowed("user1") {
		t.Error("should allow user1")
	}
	if !ch.IsAllowed("user2") {
		t.Error("should allow user2")
	}
	if ch.IsAllowed("user3") {
		t.Error("should reject user3")
	}
}

func TestChannelManager_Empty(t *testing.T) {
	b := bus.NewMessageBus(10)
	m, err := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	if err != nil {
		t.Fatalf("NewChannelManager error: %v", err)
	}
	if len(m.EnabledChannels()) != 0 {
		t.Errorf("expected 0 enabled channels, got %d", len(m.EnabledChannels()))
	}
	if err := m.StartAll(context.Background()); err != nil {
		t.Errorf("StartAll error: %v", err)
	}
	if err := m.StopAll(); err != nil {
		t.Errorf("StopAll error: %v", err)
	}
}

func TestChannelManager_Enabled(t *testing.T) {
	b := bus.NewMessageBus(10)
	m, err := NewChannelManager(config.ChannelsConfig{
		Telegram: config.TelegramConfig{Enabled: true, Token: "fake-token"},
		WebUI:    config.WebUIConfig{Enabled: true},
	}, config.GatewayConfig{}, b)
	if err != nil {
		t.Fatalf("NewChannelManager error: %v", err)
	}
	if got := len(m.EnabledChannels()); got != 2 {
		t.Errorf("enabled channels = %d, want 2", got)
	}
}

func TestChannelManager_TelegramWithoutToken(t *testing.T) {
	b := bus.NewMessageBus(10)
	_, err := NewChannelManager(config.ChannelsConfig{
		Telegram: config.TelegramConfig{Enabled: true},
	}, config.GatewayConfig{}, b)
	if err == nil {
		t.Error("expected error for telegram without token")
	}
}

// mockChannel implements Channel interface for testing
type mockChannel struct {
	name     string
	started  bool
	stopped  bool
	startErr error
	stopErr  error
	sendErr  error
	sentMsgs []bus.OutboundMessage
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockChannel) Stop() error {
	m.stopped = true
	return m.stopErr
}

func (m *mockChannel) Send(msg bus.OutboundMessage) error {
	m.sentMsgs = append(m.sentMsgs, msg)
	return m.sendErr
}

func TestChannelManager_WithMockChannel(t *testing.T) {
	b := bus.NewMessageBus(10)
	mock := &mockChannel{name: "mock"}

	m, _ := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	m.Register(mock)

	if err := m.StartAll(context.Background()); err != nil {
		t.Errorf("StartAll error: %v", err)
	}
	if !mock.started {
		t.Error("mock channel should be started")
	}

	channels := m.EnabledChannels()
	if len(channels) != 1 || channels[0] != "mock" {
		t.Errorf("EnabledChannels = %v, want [mock]", channels)
	}

	if err := m.StopAll(); err != nil {
		t.Errorf("StopAll error: %v", err)
	}
	if !mock.stopped {
		t.Error("mock channel should be stopped")
	}
}

func TestChannelManager_RoutesOutbound(t *testing.T) {
	b := bus.NewMessageBus(0)
	mock := &mockChannel{name: "mock", sendErr: fmt.Errorf("send failed")}
	other := &mockChannel{name: "other"}

	m, _ := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	m.Register(mock)
	m.Register(other)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.DispatchOutbound(ctx)
		close(done)
	}()

	b.Outbound <- bus.OutboundMessage{Channel: "mock", ChatID: "1", Content: "a"}
	b.Outbound <- bus.OutboundMessage{Channel: "other", ChatID: "2", Content: "b"}
	// unbuffered: once this is received the messages above were delivered
	b.Outbound <- bus.OutboundMessage{Channel: "nobody"}
	cancel()
	<-done

	if len(mock.sentMsgs) != 1 || mock.sentMsgs[0].Content != "a" {
		t.Errorf("mock got %v, want one message a", mock.sentMsgs)
	}
	if len(other.sentMsgs) != 1 || other.sentMsgs[0].ChatID != "2" {
		t.Errorf("other got %v, want one message for chat 2", other.sentMsgs)
	}
}

func TestChannelManager_StartAll_Error(t *testing.T) {
	b := bus.NewMessageBus(10)
	mock := &mockChannel{name: "mock", startErr: fmt.Errorf("start failed")}

	m, _ := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	m.Register(mock)

	if err := m.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestChannelManager_StartAll_TriesEveryChannel(t *testing.T) {
	b := bus.NewMessageBus(10)
	broken := &mockChannel{name: "a", startErr: fmt.Errorf("port in use")}
	fine := &mockChannel{name: "b"}

	m, _ := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	m.Register(fine)
	m.Register(broken)

	err := m.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "a: port in use") {
		t.Errorf("StartAll error = %v, want a: port in use", err)
	}
	if !fine.started {
		t.Error("b should be started even though a failed")
	}
	if got := m.EnabledChannels(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("EnabledChannels = %v, want [a b]", got)
	}
}

func TestChannelManager_StopAll_Error(t *testing.T) {
	b := bus.NewMessageBus(10)
	mock := &mockChannel{name: "mock", stopErr: fmt.Errorf("stop failed")}

	m, _ := NewChannelManager(config.ChannelsConfig{}, config.GatewayConfig{}, b)
	m.Register(mock)

	// Should not return error (errors are logged)
	if err := m.StopAll(); err != nil {
		t.Errorf("StopAll should not return error: %v", err)
	}
}

func TestTerminalChannel_Input(t *testing.T) {
	b := bus.NewMessageBus(10)
	in := strings.NewReader("상계아파트\n/key q\n/reset\n/quit\n무시\n")
	var out bytes.Buffer
	ch := NewTerminalChannel(in, &out, b)

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	select {
	case <-ch.Done():
	case <-time.After(time.Second):
		t.Fatal("terminal input not drained")
	}

	want := []struct {
		kind    bus.Kind
		content string
	}{
		{bus.KindNew, ""},
		{bus.KindEdit, "상계아파트"},
		{bus.KindKey, "q"},
		{bus.KindReset, ""},
		{bus.KindClose, ""},
	}
	for i, w := range want {
		select {
		case msg := <-b.Inbound:
			if msg.Kind != w.kind || msg.Content != w.content {
				t.Errorf("inbound[%d] = %s %q, want %s %q", i, msg.Kind, msg.Content, w.kind, w.content)
			}
			if msg.SessionKey() != "terminal:local" {
				t.Errorf("SessionKey = %q, want terminal:local", msg.SessionKey())
			}
		default:
			t.Fatalf("inbound[%d] missing", i)
		}
	}
	select {
	case msg := <-b.Inbound:
		t.Errorf("unexpected inbound after /quit: %+v", msg)
	default:
	}
}

func TestTerminalChannel_Send(t *testing.T) {
	b := bus.NewMessageBus(10)
	var out bytes.Buffer
	ch := NewTerminalChannel(strings.NewReader(""), &out, b)

	if err := ch.Send(bus.OutboundMessage{Content: "🏢 **상계주공아파트1994단지**"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "🏢 상계주공아파트1994단지\n") {
		t.Errorf("output = %q, want the plain board", got)
	}
	if strings.Contains(got, "**") {
		t.Errorf("output = %q, markup not stripped", got)
	}
	if ch.Name() != "terminal" {
		t.Errorf("Name = %q, want terminal", ch.Name())
	}
}
