package chess

import (
	"errors"
	"fmt"
)

// ErrInvalidMove matches every rejection AttemptMove can report.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrNoPiece            = fmt.Errorf("%w: no piece on source square", ErrInvalidMove)
	ErrNotYourTurn        = fmt.Errorf("%w: not this team's turn", ErrInvalidMove)
	ErrIllegalDestination = fmt.Errorf("%w: destination not reachable", ErrInvalidMove)
	ErrOccupiedBySameTeam = fmt.Errorf("%w: destination held by own piece", ErrInvalidMove)
	ErrGameOver           = fmt.Errorf("%w: game is over", ErrInvalidMove)
)

// MoveError records which attempt was rejected and why.
type MoveError struct {
	From, To Square
	Err      error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
