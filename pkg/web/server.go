// Package web provides the live diagnostics dashboard for the bridge.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-headbridge/internal/log"
	"github.com/teslashibe/go-headbridge/pkg/bridge"
	"github.com/teslashibe/go-headbridge/pkg/diag"
	"github.com/teslashibe/go-headbridge/pkg/host"
	"github.com/teslashibe/go-headbridge/pkg/hub"
)

// Status is the dashboard view of the bridge.
type Status struct {
	Host        host.Stats   `json:"host"`
	Script      bridge.Stats `json:"script"`
	Subscribers int          `json:"subscribers"`
}

// Server is the diagnostics dashboard server.
type Server struct {
	app   *fiber.App
	port  string
	board *diag.Board
	watch *hub.Hub
	log   *slog.Logger

	host   *host.Host
	script *bridge.Script
}

// NewServer creates a dashboard for h and s backed by board.
// Every value watched on board is streamed to /ws/watch subscribers.
func NewServer(port string, board *diag.Board, h *host.Host, s *bridge.Script) *Server {
	srv := &Server{
		port:   port,
		board:  board,
		watch:  hub.New("watch"),
		log:    log.Component("web"),
		host:   h,
		script: s,
	}

	board.OnWatch = func(e diag.Entry) {
		if err := srv.watch.BroadcastJSON(e); err != nil {
			srv.log.Debug("encode watch entry", "error", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "headbridge",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", srv.handleStatus)
	api.Get("/watch", srv.handleWatch)
	api.Get("/watch/:label", srv.handleWatchLabel)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/watch", websocket.New(srv.handleWatchWS))

	srv.app = app
	return srv
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.watch.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "url", "http://localhost:"+s.port)
		errCh <- s.app.Listen(":" + s.port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

// Status returns the current dashboard status.
func (s *Server) Status() Status {
	st := Status{Subscribers: s.watch.Subscribers()}
	if s.host != nil {
		st.Host = s.host.Stats()
	}
	if s.script != nil {
		st.Script = s.script.Stats()
	}
	return st
}
