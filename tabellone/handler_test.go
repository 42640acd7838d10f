package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/trattoria/cameriere"
	"github.com/taldoflemis/trattoria/pacchetto"
)

func testSettings() *Settings {
	return &Settings{
		App: pacchetto.AppSettings{Name: "tabellone-test", Version: "test"},
		HTTP: pacchetto.HTTPSettings{
			IP:     "127.0.0.1",
			Port:   "0",
			Prefix: "/v1",
			CORS: pacchetto.CORSSettings{
				Origins: []string{"http://localhost:5173"},
				Methods: []string{"GET"},
				Headers: []string{"Accept"},
			},
		},
		Board: BoardSettings{ChannelSize: 8, MaxFinished: 10},
	}
}

type testBoard struct {
	publisher  *cameriere.ChannelPublisher
	subscriber *ChannelBoardSubscriber
	board      *Board
	server     *echo.Echo
}

func newTestBoard(t *testing.T, check func(context.Context) error) *testBoard {
	t.Helper()

	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{Name: "tabellone-test", Version: "test"}),
		healthgo.WithChecks(healthgo.Config{Name: "nats", Check: check}),
	)
	require.NoError(t, err)

	publisher := cameriere.NewChannelPublisher(8)
	tb := &testBoard{
		publisher:  publisher,
		subscriber: NewChannelBoardSubscriber(publisher),
		board:      NewBoard(10),
		server:     echo.New(),
	}
	NewMainHandler(tb.server, testSettings(), tb.subscriber, tb.board, health)
	return tb
}

func healthy(context.Context) error { return nil }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		check      func(context.Context) error
		wantStatus int
	}{
		{name: "nats connected", check: healthy, wantStatus: http.StatusOK},
		{
			name:       "nats down",
			check:      func(context.Context) error { return errors.New("NATS connection is not active") },
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			tb := newTestBoard(t, tt.check)
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()

			// Act
			tb.server.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetBoard(t *testing.T) {
	// Arrange
	tb := newTestBoard(t, healthy)
	tb.board.Apply(cameriere.Order{ID: 2, Status: cameriere.StatusPreparing})
	tb.board.Apply(cameriere.Order{ID: 1, Status: cameriere.StatusPending})
	tb.board.Apply(cameriere.Order{ID: 3, Status: cameriere.StatusCompleted})
	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	rec := httptest.NewRecorder()

	// Act
	tb.server.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var resp BoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Upcoming, 2)
	assert.Equal(t, int64(1), resp.Upcoming[0].ID)
	assert.Equal(t, int64(2), resp.Upcoming[1].ID)
	require.Len(t, resp.Past, 1)
	assert.Equal(t, int64(3), resp.Past[0].ID)
}

func TestLiveOrdersSSE(t *testing.T) {
	// Arrange
	tb := newTestBoard(t, healthy)
	srv := httptest.NewServer(tb.server)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/orders/sse", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return tb.subscriber.Len() == 1 }, time.Second, 5*time.Millisecond)

	// Act
	require.NoError(t, tb.publisher.Publish(t.Context(), cameriere.Order{ID: 7, Status: cameriere.StatusPreparing}))

	// Assert
	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: order\n", event)

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	var order cameriere.Order
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &order))
	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, cameriere.StatusPreparing, order.Status)

	cancel()
	assert.Eventually(t, func() bool { return tb.subscriber.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestLiveOrdersWebSocket(t *testing.T) {
	// Arrange
	tb := newTestBoard(t, healthy)
	srv := httptest.NewServer(tb.server)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/orders/ws"
	ws, _, err := websocket.DefaultDialer.DialContext(t.Context(), url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return tb.subscriber.Len() == 1 }, time.Second, 5*time.Millisecond)

	// Act
	require.NoError(t, tb.publisher.Publish(t.Context(), cameriere.Order{ID: 9, Status: cameriere.StatusCompleted}))

	// Assert
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var order cameriere.Order
	require.NoError(t, ws.ReadJSON(&order))
	assert.Equal(t, int64(9), order.ID)
	assert.Equal(t, cameriere.StatusCompleted, order.Status)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return tb.subscriber.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketRejectsUnknownOrigin(t *testing.T) {
	tb := newTestBoard(t, healthy)
	srv := httptest.NewServer(tb.server)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/orders/ws"
	_, resp, err := websocket.DefaultDialer.DialContext(t.Context(), url, http.Header{"Origin": []string{"https://evil.example"}})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
