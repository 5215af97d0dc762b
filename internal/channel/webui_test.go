package channel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/stellarlinkco/aptname/internal/bus"
	"github.com/stellarlinkco/aptname/internal/config"
	"github.com/stellarlinkco/aptname/internal/game"
)

func newTestWebUI(t *testing.T, cfg config.WebUIConfig) (*WebUIChannel, *bus.MessageBus, *httptest.Server) {
	t.Helper()
	b := bus.NewMessageBus(10)
	ch, err := NewWebUIChannel(cfg, config.GatewayConfig{}, b)
	require.NoError(t, err)
	handler, err := ch.Handler()
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ch, b, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func nextInbound(t *testing.T, b *bus.MessageBus) bus.InboundMessage {
	t.Helper()
	select {
	case msg := <-b.Inbound:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for inbound message")
	}
	return bus.InboundMessage{}
}

func TestNewWebUIChannel(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, err := NewWebUIChannel(config.WebUIConfig{Enabled: true}, config.GatewayConfig{Port: 0}, b)
	if err != nil {
		t.Fatalf("NewWebUIChannel: %v", err)
	}
	if ch.Name() != "webui" {
		t.Errorf("Name() = %q, want %q", ch.Name(), "webui")
	}
	if ch.port != config.DefaultPort {
		t.Errorf("port = %d, want %d", ch.port, config.DefaultPort)
	}
}

func TestWebUIChannel_StaticFiles(t *testing.T) {
	_, _, srv := newTestWebUI(t, config.WebUIConfig{Enabled: true})

	for _, path := range []string{"/", "/app.js", "/style.css"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
		if path == "/" && !strings.Contains(string(body), "아파트 이름 짓기") {
			t.Errorf("GET / body missing title")
		}
	}
}

func TestWebUIChannel_StartStop(t *testing.T) {
	b := bus.NewMessageBus(10)
	ch, err := NewWebUIChannel(config.WebUIConfig{Enabled: true}, config.GatewayConfig{Host: "127.0.0.1", Port: 19876}, b)
	if err != nil {
		t.Fatal(err)
	}

	if err := ch.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:19876/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("GET / status = %d, want 200", resp.StatusCode)
	}

	if err := ch.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestWebUIChannel_Session(t *testing.T) {
	ch, b, srv := newTestWebUI(t, config.WebUIConfig{Enabled: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	hello := nextInbound(t, b)
	require.Equal(t, bus.KindNew, hello.Kind)
	require.Equal(t, "webui", hello.Channel)
	require.True(t, strings.HasPrefix(hello.ChatID, "webui-"), "chatID = %q", hello.ChatID)
	require.Equal(t, "127.0.0.1", hello.SenderID)

	for _, raw := range []string{
		`{"type":"edit","content":"상계역"}`,
		`not json`,
		`{"type":"bogus","content":"x"}`,
		`{"type":"key","content":"q"}`,
	} {
		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(raw)))
	}

	edit := nextInbound(t, b)
	require.Equal(t, bus.KindEdit, edit.Kind)
	require.Equal(t, "상계역", edit.Content)
	require.Equal(t, hello.ChatID, edit.ChatID)

	key := nextInbound(t, b)
	require.Equal(t, bus.KindKey, key.Kind)
	require.Equal(t, "q", key.Content)

	snap := game.Snapshot{Seq: 3, Name: "상계역", Total: 1, Feed: []game.Entry{{ID: 0, Text: "역", Kind: "requirement", Done: true}}}
	require.NoError(t, ch.Send(bus.OutboundMessage{
		Channel:  "webui",
		ChatID:   hello.ChatID,
		Content:  "🏢 **상계역**",
		Metadata: map[string]any{"snapshot": snap},
	}))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var resp struct {
		Type     string        `json:"type"`
		Content  string        `json:"content"`
		Snapshot game.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Equal(t, "snapshot", resp.Type)
	require.Equal(t, "🏢 **상계역**", resp.Content)
	require.Equal(t, snap, resp.Snapshot)

	conn.Close(websocket.StatusNormalClosure, "")
	bye := nextInbound(t, b)
	require.Equal(t, bus.KindClose, bye.Kind)
	require.Equal(t, hello.ChatID, bye.ChatID)

	// a departed player is not an error
	require.NoError(t, ch.Send(bus.OutboundMessage{Channel: "webui", ChatID: hello.ChatID, Content: "late"}))
}

func TestWebUIChannel_Rejected(t *testing.T) {
	_, b, srv := newTestWebUI(t, config.WebUIConfig{Enabled: true, AllowFrom: []string{"10.0.0.1"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"edit","content":"x"}`)))
	conn.Close(websocket.StatusNormalClosure, "")

	select {
	case msg := <-b.Inbound:
		t.Errorf("unexpected inbound from rejected client: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWebUIChannel_Notice(t *testing.T) {
	ch, b, srv := newTestWebUI(t, config.WebUIConfig{Enabled: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	hello := nextInbound(t, b)

	require.NoError(t, ch.Send(bus.OutboundMessage{Channel: "webui", ChatID: hello.ChatID, Content: "아직이에요"}))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var resp wsMessage
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Equal(t, "notice", resp.Type)
	require.Equal(t, "아직이에요", resp.Content)
	require.Nil(t, resp.Snapshot)
}
