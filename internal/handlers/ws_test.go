package handlers

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulkill3r/pythia/internal/models"
)

// wsPair upgrades a loopback connection and hands back both ends. The client
// side never reads unless the test does.
func wsPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the websocket never arrived")
	}
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestWSConn_SendDelivers(t *testing.T) {
	serverConn, clientConn := wsPair(t)
	sub := newWSConn(serverConn)

	require.NoError(t, sub.Send(models.EvaluatedEvent{ID: "1", Title: "Hello", Criticality: 2}))

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.EvaluatedEvent
	require.NoError(t, clientConn.ReadJSON(&got))
	assert.Equal(t, "Hello", got.Title)
}

func TestWSConn_StalledPeerTimesOutInsteadOfBlocking(t *testing.T) {
	serverConn, _ := wsPair(t)

	// Short deadline; production uses writeWait
	sub := &wsConn{conn: serverConn, deadline: 50 * time.Millisecond}

	// The client never reads. Large frames fill the socket buffers until a
	// write blocks; the deadline must turn that block into an error so the
	// hub can prune the subscriber.
	event := models.EvaluatedEvent{ID: "stall", Summary: strings.Repeat("x", 64*1024)}

	var sendErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if sendErr = sub.Send(event); sendErr != nil {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Send never returned against a peer that stopped reading")
	}

	require.Error(t, sendErr)
	var netErr net.Error
	if assert.ErrorAs(t, sendErr, &netErr) {
		assert.True(t, netErr.Timeout(), "expected a deadline error, got %v", sendErr)
	}

	// The connection is unusable after a write timeout; later sends must
	// keep failing so the hub's prune is final.
	assert.Error(t, sub.Send(models.EvaluatedEvent{ID: "after"}))
}
