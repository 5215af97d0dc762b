// Package gateway routes player input from every channel to one game session
// per chat and sends the rendered state back.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/channel"
	"github.com/stellarlinkco/aptname/internal/config"
	"github.com/stellarlinkco/aptname/internal/dataset"
	"github.com/stellarlinkco/aptname/internal/game"
	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/render"
	"github.com/stellarlinkco/aptname/internal/requirement"
	"github.com/stellarlinkco/aptname/internal/sched"
)

// flushDelay batches the snapshots of fast event ticks into one outbound
// message.
const flushDelay = 150 * time.Millisecond

var errTooManySessions = errors.New("too many sessions")

// Options for creating a Gateway
type Options struct {
	SignalChan chan os.Signal // for testing signal handling
	// ExitWhenIdle ends Run once the last open session is closed.
	ExitWhenIdle bool
	// Scheduler replaces the wall-clock scheduler. Callers must then invoke
	// the gateway from the scheduler's goroutine themselves.
	Scheduler sched.Scheduler
	Rand      random.Source
	Data      *dataset.Data
}

type session struct {
	id      string
	channel string
	chatID  string
	game    *game.Session
	last    game.Snapshot
	flush   sched.Slot
}

type Gateway struct {
	cfg        *config.Config
	bus        *bus.MessageBus
	channels   *channel.ChannelManager
	loop       *sched.Loop
	runtime    *sched.Runtime
	sched      sched.Scheduler
	rand       random.Source
	data       *dataset.Data
	sessions   map[string]*session
	signalChan chan os.Signal // for testing
	idle       chan struct{}
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	bufSize := cfg.Gateway.BufSize
	if bufSize <= 0 {
		bufSize = config.DefaultBufSize
	}

	g := &Gateway{
		cfg:        cfg,
		bus:        bus.NewMessageBus(bufSize),
		loop:       sched.NewLoop(bufSize),
		sessions:   make(map[string]*session),
		signalChan: opts.SignalChan,
	}
	if opts.ExitWhenIdle {
		g.idle = make(chan struct{})
	}

	g.sched = opts.Scheduler
	if g.sched == nil {
		g.runtime = sched.NewRuntime(g.loop)
		g.sched = g.runtime
	}

	g.rand = opts.Rand
	if g.rand == nil {
		if cfg.Game.Seed != 0 {
			g.rand = random.NewSeeded(cfg.Game.Seed)
			log.Printf("[gateway] seeded sessions: %d", cfg.Game.Seed)
		} else {
			g.rand = random.Global()
		}
	}

	g.data = opts.Data
	if g.data == nil {
		data, err := loadData(cfg)
		if err != nil {
			return nil, err
		}
		g.data = data
	}

	chMgr, err := channel.NewChannelManager(cfg.Channels, cfg.Gateway, g.bus)
	if err != nil {
		return nil, fmt.Errorf("create channel manager: %w", err)
	}
	g.channels = chMgr

	return g, nil
}

// loadData returns the built-in data with the configured pack applied.
func loadData(cfg *config.Config) (*dataset.Data, error) {
	data, err := dataset.Default()
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	pack, err := dataset.LoadPack(cfg.PackPath())
	if err != nil {
		return nil, err
	}
	if pack != nil {
		log.Printf("[gateway] data pack loaded from %s", cfg.PackPath())
	}
	return data.Apply(pack), nil
}

// Bus exposes the message bus to extra channels.
func (g *Gateway) Bus() *bus.MessageBus { return g.bus }

// Register adds a channel that is not driven by the config.
func (g *Gateway) Register(ch channel.Channel) { g.channels.Register(ch) }

func (g *Gateway) Run(ctx context.Context) error {
	idle := g.idle

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go g.loop.Run(loopCtx)

	// outbound outlives ctx so the final boards still reach the players
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatched := make(chan struct{})
	go func() {
		g.bus.DispatchOutbound(dispatchCtx)
		close(dispatched)
	}()
	drainOutbound := func() {
		stopDispatch()
		<-dispatched
	}

	if g.runtime != nil {
		g.runtime.Start()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := g.channels.StartAll(ctx); err != nil {
		drainOutbound()
		_ = g.Shutdown()
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	go g.processLoop(ctx)

	log.Printf("[gateway] running on %s:%d", g.cfg.Gateway.Host, g.cfg.Gateway.Port)

	// Use injected signal channel for testing, or create default
	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
	}
	select {
	case <-sigCh:
	case <-idle:
	case <-ctx.Done():
	}

	log.Printf("[gateway] shutting down...")
	cancel()
	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := g.loop.Do(stopCtx, g.closeAll); err != nil {
		log.Printf("[gateway] close sessions warning: %v", err)
	}
	drainOutbound()
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			log.Printf("[gateway] %s from %s/%s: %s", msg.Kind, msg.Channel, msg.SenderID, truncate(msg.Content, 80))
			if err := g.loop.Post(func() { g.handle(msg) }); err != nil {
				log.Printf("[gateway] drop inbound: %v", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handle applies one inbound message. It runs on the scheduler's goroutine.
func (g *Gateway) handle(msg bus.InboundMessage) {
	key := msg.SessionKey()
	s := g.sessions[key]

	switch msg.Kind {
	case bus.KindClose:
		if s == nil {
			return
		}
		if s.flush.Armed() {
			g.send(s)
		}
		g.drop(key, s)
		if g.idle != nil && len(g.sessions) == 0 {
			close(g.idle)
			g.idle = nil
		}
		return
	case bus.KindNew, bus.KindReset:
		var info *game.Info
		if s != nil {
			if msg.Kind == bus.KindReset {
				info = s.game.Info()
			}
			g.drop(key, s)
		}
		if _, err := g.open(msg, info); err != nil {
			g.notice(msg, err)
		}
		return
	}

	if s == nil {
		var err error
		if s, err = g.open(msg, nil); err != nil {
			g.notice(msg, err)
			return
		}
	}

	switch msg.Kind {
	case bus.KindEdit:
		s.game.Edit(msg.Content)
	case bus.KindKey:
		if err := s.game.SelectKey(msg.Content); err != nil {
			g.notice(msg, err)
		}
	case bus.KindShow:
		s.last = s.game.Snapshot()
		g.send(s)
	default:
		log.Printf("[gateway] unknown kind %q from %s", msg.Kind, key)
	}
}

func (g *Gateway) open(msg bus.InboundMessage, info *game.Info) (*session, error) {
	limit := g.cfg.Game.MaxSessions
	if limit <= 0 {
		limit = config.DefaultMaxSessions
	}
	if len(g.sessions) >= limit {
		return nil, errTooManySessions
	}

	gs, err := game.NewSession(game.Options{
		Data:  g.data,
		Rand:  g.rand,
		Sched: g.sched,
		Info:  info,
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		id:      uuid.NewString(),
		channel: msg.Channel,
		chatID:  msg.ChatID,
		game:    gs,
	}
	gs.Subscribe(func(snap game.Snapshot) {
		s.last = snap
		s.flush.Rearm(g.sched, flushDelay, func() { g.send(s) })
	})
	g.sessions[msg.SessionKey()] = s
	gs.Start()

	log.Printf("[gateway] session %s opened for %s: %s", s.id, msg.SessionKey(), gs.Name())
	s.last = gs.Snapshot()
	g.send(s)
	return s, nil
}

func (g *Gateway) drop(key string, s *session) {
	s.flush.Stop()
	s.game.Close()
	delete(g.sessions, key)
	log.Printf("[gateway] session %s closed for %s", s.id, key)
}

func (g *Gateway) closeAll() {
	for key, s := range g.sessions {
		g.drop(key, s)
	}
}

func (g *Gateway) send(s *session) {
	g.bus.Outbound <- bus.OutboundMessage{
		Channel: s.channel,
		ChatID:  s.chatID,
		Content: render.Markdown(s.last),
		Metadata: map[string]any{
			"snapshot": s.last,
			"session":  s.id,
		},
	}
}

// notice tells the player why their input was not applied.
func (g *Gateway) notice(msg bus.InboundMessage, err error) {
	log.Printf("[gateway] %s from %s: %v", msg.Kind, msg.SessionKey(), err)
	g.bus.Outbound <- bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: noticeText(err),
	}
}

func noticeText(err error) string {
	switch {
	case errors.Is(err, game.ErrNoKeyboard):
		return "아직 자판을 고를 때가 아니에요."
	case errors.Is(err, requirement.ErrUnknownKey):
		return "QWERTY 자판의 영문 키 하나를 골라 주세요. 예: /key Q"
	case errors.Is(err, errTooManySessions):
		return "지금은 분양이 꽉 찼어요. 잠시 후 다시 시도해 주세요."
	}
	return "처리하지 못했어요: " + err.Error()
}

// Sessions reports how many games are open.
func (g *Gateway) Sessions() int { return len(g.sessions) }

func (g *Gateway) Shutdown() error {
	if g.runtime != nil {
		g.runtime.Stop()
	}
	_ = g.channels.StopAll()
	log.Printf("[gateway] shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
