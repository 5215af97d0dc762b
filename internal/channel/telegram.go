package channel

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/config"
	"github.com/stellarlinkco/aptname/internal/render"
)

const telegramChannelName = "telegram"

// Boards longer than this are split; Telegram caps a message at 4096 chars.
const telegramMaxLen = 4000

// TelegramBot is the slice of the Bot API the channel uses.
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

// tgBotWrapper adapts *tgbotapi.BotAPI to TelegramBot.
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory dials the Bot API. Tests swap in a fake.
type BotFactory func(token, apiEndpoint string, client *http.Client) (TelegramBot, error)

var defaultBotFactory BotFactory = func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// TelegramChannel plays one session per chat. Each state update edits the
// board message last sent to the chat until the player writes again.
type TelegramChannel struct {
	BaseChannel
	token      string
	bot        TelegramBot
	proxy      string
	cancel     context.CancelFunc
	botFactory BotFactory

	mu    sync.Mutex
	board map[int64]int
}

func NewTelegramChannel(cfg config.TelegramConfig, b *bus.MessageBus) (*TelegramChannel, error) {
	return NewTelegramChannelWithFactory(cfg, b, defaultBotFactory)
}

// NewTelegramChannelWithFactory is NewTelegramChannel with a custom BotFactory.
func NewTelegramChannelWithFactory(cfg config.TelegramConfig, b *bus.MessageBus, factory BotFactory) (*TelegramChannel, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	ch := &TelegramChannel{
		BaseChannel: NewBaseChannel(telegramChannelName, b, cfg.AllowFrom),
		token:       cfg.Token,
		proxy:       cfg.Proxy,
		botFactory:  factory,
		board:       make(map[int64]int),
	}
	return ch, nil
}

func (t *TelegramChannel) initBot() error {
	client := http.DefaultClient
	if t.proxy != "" {
		proxyURL, err := url.Parse(t.proxy)
		if err != nil {
			return fmt.Errorf("parse proxy url: %w", err)
		}
		client = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}

	bot, err := t.botFactory(t.token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot = bot
	log.Printf("[telegram] authorized as @%s", bot.GetSelf().UserName)
	return nil
}

func (t *TelegramChannel) Start(ctx context.Context) error {
	if err := t.initBot(); err != nil {
		return err
	}

	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update := <-updates:
				if update.Message == nil {
					continue
				}
				t.handleMessage(update.Message)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("[telegram] polling started")
	return nil
}

func (t *TelegramChannel) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	senderID := strconv.FormatInt(msg.From.ID, 10)

	if !t.IsAllowed(senderID) {
		log.Printf("[telegram] rejected message from %s (%s)", senderID, msg.From.UserName)
		return
	}

	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	if content == "" {
		return
	}
	kind, content := bus.ParseCommand(content)

	// the next board goes below the player's message
	t.mu.Lock()
	delete(t.board, msg.Chat.ID)
	t.mu.Unlock()

	t.bus.Inbound <- bus.InboundMessage{
		Channel:   telegramChannelName,
		SenderID:  senderID,
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Unix(int64(msg.Date), 0),
		Metadata: map[string]any{
			"username":   msg.From.UserName,
			"first_name": msg.From.FirstName,
			"message_id": msg.MessageID,
		},
	}
}

func (t *TelegramChannel) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	log.Printf("[telegram] stopped")
	return nil
}

// SetBot replaces the bot, skipping initBot.
func (t *TelegramChannel) SetBot(bot TelegramBot) {
	t.bot = bot
}

func (t *TelegramChannel) Send(msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", msg.ChatID, err)
	}

	content := render.TelegramHTML(msg.Content)
	if len(content) <= telegramMaxLen {
		t.mu.Lock()
		id, ok := t.board[chatID]
		t.mu.Unlock()
		if ok && t.edit(chatID, id, content, msg.Content) {
			return nil
		}
	}

	var last int
	for _, chunk := range splitChunks(content, telegramMaxLen) {
		tgMsg := tgbotapi.NewMessage(chatID, chunk)
		tgMsg.ParseMode = tgbotapi.ModeHTML
		sent, err := t.bot.Send(tgMsg)
		if err != nil {
			// Retry without HTML parse mode
			tgMsg.ParseMode = ""
			tgMsg.Text = render.Plain(msg.Content)
			sent, err = t.bot.Send(tgMsg)
			if err != nil {
				return fmt.Errorf("send telegram message: %w", err)
			}
			last = sent.MessageID
			break
		}
		last = sent.MessageID
	}

	t.mu.Lock()
	if last != 0 {
		t.board[chatID] = last
	} else {
		delete(t.board, chatID)
	}
	t.mu.Unlock()
	return nil
}

// edit rewrites the board message in place. It reports false when a fresh
// message has to be sent instead.
func (t *TelegramChannel) edit(chatID int64, messageID int, html, raw string) bool {
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, html)
	cfg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(cfg)
	if err == nil || strings.Contains(err.Error(), "message is not modified") {
		return true
	}
	cfg.ParseMode = ""
	cfg.Text = render.Plain(raw)
	if _, err := t.bot.Send(cfg); err == nil {
		return true
	}
	log.Printf("[telegram] edit %d in chat %d failed: %v", messageID, chatID, err)
	return false
}

// splitChunks cuts s at the last newline before max where possible.
func splitChunks(s string, max int) []string {
	var chunks []string
	for len(s) > 0 {
		chunk := s
		if len(chunk) > max {
			if idx := strings.LastIndex(chunk[:max], "\n"); idx > 0 {
				chunk = chunk[:idx]
			} else {
				chunk = chunk[:max]
			}
		}
		chunks = append(chunks, chunk)
		s = s[len(chunk):]
	}
	return chunks
}
