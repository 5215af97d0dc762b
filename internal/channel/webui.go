package channel

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/config"
)

//go:embed static
var staticFiles embed.FS

const webUIChannelName = "webui"

type wsMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Snapshot any    `json:"snapshot,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	id   string
}

type WebUIChannel struct {
	BaseChannel
	host    string
	port    int
	server  *http.Server
	clients sync.Map
}

func NewWebUIChannel(cfg config.WebUIConfig, gwCfg config.GatewayConfig, b *bus.MessageBus) (*WebUIChannel, error) {
	port := gwCfg.Port
	if port == 0 {
		port = config.DefaultPort
	}

	ch := &WebUIChannel{
		BaseChannel: NewBaseChannel(webUIChannelName, b, cfg.AllowFrom),
		host:        gwCfg.Host,
		port:        port,
	}
	return ch, nil
}

// Handler serves the page and the websocket endpoint.
func (w *WebUIChannel) Handler() (http.Handler, error) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("embed static fs: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.HandleFunc("/ws", w.handleWS)
	return mux, nil
}

func (w *WebUIChannel) Start(ctx context.Context) error {
	handler, err := w.Handler()
	if err != nil {
		return err
	}

	w.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", w.host, w.port),
		Handler: handler,
	}

	go func() {
		log.Printf("[webui] listening on %s", w.server.Addr)
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[webui] server error: %v", err)
		}
	}()

	return nil
}

func (w *WebUIChannel) handleWS(wr http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(wr, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("[webui] websocket accept error: %v", err)
		return
	}

	clientID := "webui-" + uuid.NewString()
	client := &wsClient{conn: conn, id: clientID}
	w.clients.Store(clientID, client)
	log.Printf("[webui] client connected: %s", clientID)

	// the allow list holds remote addresses; every connection plays its own session
	sender, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		sender = r.RemoteAddr
	}
	allowed := w.IsAllowed(sender)
	if allowed {
		w.publish(sender, clientID, bus.KindNew, "")
	} else {
		log.Printf("[webui] rejected client %s from %s", clientID, sender)
	}

	defer func() {
		w.clients.Delete(clientID)
		conn.CloseNow()
		if allowed {
			w.publish(sender, clientID, bus.KindClose, "")
		}
		log.Printf("[webui] client disconnected: %s", clientID)
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		if !allowed {
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch kind := bus.Kind(msg.Type); kind {
		case bus.KindEdit, bus.KindKey, bus.KindReset, bus.KindNew, bus.KindShow:
			w.publish(sender, clientID, kind, msg.Content)
		}
	}
}

func (w *WebUIChannel) publish(sender, clientID string, kind bus.Kind, content string) {
	w.bus.Inbound <- bus.InboundMessage{
		Channel:   webUIChannelName,
		SenderID:  sender,
		ChatID:    clientID,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (w *WebUIChannel) Send(msg bus.OutboundMessage) error {
	out := wsMessage{Type: "notice", Content: msg.Content}
	if snap, ok := msg.Metadata["snapshot"]; ok {
		out.Type = "snapshot"
		out.Snapshot = snap
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}

	client, ok := w.clients.Load(msg.ChatID)
	if !ok {
		// the player already left
		return nil
	}

	c := client.(*wsClient)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (w *WebUIChannel) Stop() error {
	if w.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.server.Shutdown(ctx); err != nil {
			log.Printf("[webui] shutdown error: %v", err)
		}
	}
	w.clients.Range(func(key, value any) bool {
		c := value.(*wsClient)
		c.conn.CloseNow()
		return true
	})
	log.Printf("[webui] stopped")
	return nil
}
