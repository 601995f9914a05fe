package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-headbridge/pkg/hub"
)

// handleStatus returns host and script counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleWatch returns every watched value sorted by label
func (s *Server) handleWatch(c *fiber.Ctx) error {
	return c.JSON(s.board.List())
}

func (s *Server) handleWatchLabel(c *fiber.Ctx) error {
	label := c.Params("label")
	e, ok := s.board.Snapshot()[label]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown label " + label,
		})
	}
	return c.JSON(e)
}

// handleWatchWS sends the current board, then streams updates.
func (s *Server) handleWatchWS(conn *websocket.Conn) {
	for _, e := range s.board.List() {
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}
	hub.NewClient(s.watch, conn).Run()
}
