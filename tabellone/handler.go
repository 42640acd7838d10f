package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taldoflemis/trattoria/cameriere"
)

var tracer = otel.Tracer("tabellone")

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

type BoardResponse struct {
	Upcoming []cameriere.Order `json:"upcoming"`
	Past     []cameriere.Order `json:"past"`
}

type MainHandler struct {
	subscriber BoardSubscriber
	board      *Board
	health     *healthgo.Health
	upgrader   websocket.Upgrader
}

func NewMainHandler(e *echo.Echo, settings *Settings, subscriber BoardSubscriber, board *Board, health *healthgo.Health) *MainHandler {
	logger := slog.Default()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware(settings.App.Name,
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	origins := settings.HTTP.CORS.Origins
	handler := &MainHandler{
		subscriber: subscriber,
		board:      board,
		health:     health,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin)
			},
		},
	}

	e.GET("/healthz", handler.HealthCheck)
	v1 := e.Group(settings.HTTP.Prefix)

	v1.GET("/orders", handler.GetBoard)
	v1.GET("/orders/sse", handler.GetLiveOrdersSSE)
	v1.GET("/orders/ws", handler.GetLiveOrdersWS)

	return handler
}

// GetBoard godoc
//
// @Summary Current state of the order board
// @Tags order
// @Produce json
// @Success 200 {object} BoardResponse
// @Router /v1/orders [get]
func (h *MainHandler) GetBoard(c echo.Context) error {
	upcoming, past := h.board.Snapshot()
	if upcoming == nil {
		upcoming = []cameriere.Order{}
	}
	if past == nil {
		past = []cameriere.Order{}
	}
	return c.JSON(http.StatusOK, BoardResponse{Upcoming: upcoming, Past: past})
}

// GetLiveOrdersSSE godoc
//
// @Summary Get live order status updates via Server-Sent Events (SSE)
// @Tags order
// @Produce  text/event-stream
// @Success 200 {object} cameriere.Order
// @Router /v1/orders/sse [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	id, ch, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		return err
	}
	defer h.unsubscribe(c, id)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "client closed connection")
			return nil
		case order, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(order)
			if err != nil {
				slog.ErrorContext(ctx, "marshal order for SSE", slog.Any("err", err))
				continue
			}
			_, err = c.Response().Write([]byte("event: order\ndata: " + string(data) + "\n\n"))
			if err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return err
			}
			flusher.Flush()
		}
	}
}

// GetLiveOrdersWS godoc
//
// @Summary Get live order status updates over a WebSocket
// @Tags order
// @Success 101 {object} cameriere.Order
// @Router /v1/orders/ws [get]
func (h *MainHandler) GetLiveOrdersWS(c echo.Context) error {
	ctx := c.Request().Context()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade to websocket", slog.Any("err", err))
		return nil
	}
	defer ws.Close()

	id, ch, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to live orders", slog.Any("err", err))
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"))
		return nil
	}
	defer h.unsubscribe(c, id)

	// the board only pushes; reading detects the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			slog.InfoContext(ctx, "websocket client went away")
			return nil
		case <-ctx.Done():
			return nil
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case order, ok := <-ch:
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteJSON(order); err != nil {
				slog.ErrorContext(ctx, "write websocket", slog.Any("err", err))
				return nil
			}
		}
	}
}

func (h *MainHandler) unsubscribe(c echo.Context, id string) {
	ctx := c.Request().Context()
	if err := h.subscriber.Unsubscribe(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to unsubscribe from live orders", slog.Any("err", err))
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}
