package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/render"
)

const (
	terminalChannelName = "terminal"
	terminalChatID      = "local"
)

// TerminalChannel plays one session over a line-oriented reader and writer.
type TerminalChannel struct {
	BaseChannel
	in   io.Reader
	out  io.Writer
	mu   sync.Mutex
	done chan struct{}
}

func NewTerminalChannel(in io.Reader, out io.Writer, b *bus.MessageBus) *TerminalChannel {
	return &TerminalChannel{
		BaseChannel: NewBaseChannel(terminalChannelName, b, nil),
		in:          in,
		out:         out,
		done:        make(chan struct{}),
	}
}

// Done is closed when the input is exhausted.
func (t *TerminalChannel) Done() <-chan struct{} { return t.done }

func (t *TerminalChannel) Start(ctx context.Context) error {
	go func() {
		defer close(t.done)
		t.publish(ctx, bus.KindNew, "")
		sc := bufio.NewScanner(t.in)
		for sc.Scan() {
			line := strings.TrimRight(sc.Text(), "\r")
			if line == "/quit" {
				break
			}
			kind, content := bus.ParseCommand(line)
			if !t.publish(ctx, kind, content) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Printf("[terminal] read error: %v", err)
		}
		t.publish(ctx, bus.KindClose, "")
	}()
	return nil
}

func (t *TerminalChannel) publish(ctx context.Context, kind bus.Kind, content string) bool {
	msg := bus.InboundMessage{
		Channel:   terminalChannelName,
		SenderID:  terminalChatID,
		ChatID:    terminalChatID,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
	select {
	case t.bus.Inbound <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func (t *TerminalChannel) Send(msg bus.OutboundMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "%s\n%s\n", strings.Repeat("─", 40), render.Plain(msg.Content))
	return err
}

func (t *TerminalChannel) Stop() error { return nil }
