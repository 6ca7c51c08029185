package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/imjasonh/kingcapture/chess"
	"github.com/imjasonh/kingcapture/lobby"
)

func (s *Server) createGame(c *fiber.Ctx) error {
	sess := s.manager.Create()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"gameId": sess.ID,
	})
}

func (s *Server) getGame(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	st, err := sess.State()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(st)
}

// joinGame seats the caller. Callers without an ID are issued one.
func (s *Server) joinGame(c *fiber.Ctx) error {
	playerID := playerIDFrom(c)
	if playerID == "" {
		playerID = uuid.NewString()
	}
	p := &lobby.Player{ID: playerID, Name: playerID}
	sess, err := s.manager.Join(c.Params("id"), p)
	if err != nil {
		return sendError(c, err)
	}
	s.logger.Info("player joined", "game", sess.ID, "player", playerID, "team", p.Team)
	return c.JSON(fiber.Map{
		"playerId": playerID,
		"team":     p.Team,
	})
}

func (s *Server) destinations(c *fiber.Ctx) error {
	sq, err := chess.ParseSquare(c.Params("square"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	dests, err := sess.Select(c.Locals(playerIDKey).(string), sq)
	if err != nil {
		return sendError(c, err)
	}
	if dests == nil {
		dests = []chess.Square{}
	}
	return c.JSON(fiber.Map{
		"square":       sq,
		"destinations": dests,
	})
}

func (s *Server) move(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	from, to, err := req.squares()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	out, err := sess.Move(c.Locals(playerIDKey).(string), from, to)
	if err != nil {
		return sendError(c, err)
	}
	if !out.Accepted {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(out)
	}
	return c.JSON(out)
}

func (s *Server) reset(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return sendError(c, err)
	}
	if err := sess.Reset(c.Locals(playerIDKey).(string)); err != nil {
		return sendError(c, err)
	}
	st, err := sess.State()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(st)
}
