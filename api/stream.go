package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/imjasonh/kingcapture/chess"
	"github.com/imjasonh/kingcapture/lobby"
)

// stream pushes every session update to the socket and accepts move
// messages from it. Moves go through the same session queue as REST calls.
func (s *Server) stream(c *websocket.Conn) {
	gameID := c.Params("id")
	playerID, _ := c.Locals(playerIDKey).(string)
	logger := s.logger.With("game", gameID, "player", playerID)

	var writeMu sync.Mutex
	write := func(t MessageType, v any) {
		msg, err := newMessage(t, v)
		if err != nil {
			logger.Error("encoding message", "type", t, "err", err)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(msg); err != nil {
			logger.Debug("write failed", "err", err)
		}
	}

	sess, err := s.manager.Get(gameID)
	if err != nil {
		write(MessageTypeError, errorPayload{Error: err.Error()})
		c.Close()
		return
	}

	updates := make(chan lobby.Update, 16)
	unsubscribe := sess.Subscribe(uuid.NewString(), updates)
	defer unsubscribe()

	st, err := sess.State()
	if err != nil {
		write(MessageTypeError, errorPayload{Error: err.Error()})
		return
	}
	write(MessageTypeState, st)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-sess.Done():
				c.Close()
				return
			case u := <-updates:
				write(MessageTypeUpdate, u)
			}
		}
	}()

	logger.Info("socket connected")
	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			logger.Debug("socket closed", "err", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			write(MessageTypeError, errorPayload{Error: fmt.Sprintf("parse message: %v", err)})
			continue
		}
		out, err := handleMessage(sess, playerID, msg)
		switch {
		case err != nil:
			write(MessageTypeError, errorPayload{Error: err.Error()})
		case !out.Accepted:
			write(MessageTypeError, errorPayload{Error: out.Err.Error(), Outcome: &out})
		}
	}
}

// handleMessage applies one client message. Accepted moves reach the client
// through the session broadcast, so only rejections need a direct reply,
// and those go back as error messages.
func handleMessage(sess *lobby.Session, playerID string, msg Message) (chess.MoveOutcome, error) {
	switch msg.Type {
	case MessageTypeMove:
		var req moveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return chess.MoveOutcome{}, fmt.Errorf("parse move: %w", err)
		}
		from, to, err := req.squares()
		if err != nil {
			return chess.MoveOutcome{}, err
		}
		return sess.Move(playerID, from, to)
	default:
		return chess.MoveOutcome{}, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
