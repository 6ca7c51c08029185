package chess

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Result int

const (
	InProgress Result = iota
	WhiteWins
	BlackWins
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "White wins"
	case BlackWins:
		return "Black wins"
	}
	return "In progress"
}

func (r Result) MarshalText() ([]byte, error) {
	switch r {
	case InProgress:
		return []byte("in_progress"), nil
	case WhiteWins:
		return []byte("white_wins"), nil
	case BlackWins:
		return []byte("black_wins"), nil
	}
	return nil, fmt.Errorf("marshal result %d: unknown", int(r))
}

func (r *Result) UnmarshalText(b []byte) error {
	switch string(b) {
	case "in_progress":
		*r = InProgress
	case "white_wins":
		*r = WhiteWins
	case "black_wins":
		*r = BlackWins
	default:
		return fmt.Errorf("unmarshal result %q: unknown", b)
	}
	return nil
}

func winFor(t Team) Result {
	if t == White {
		return WhiteWins
	}
	return BlackWins
}

// MoveOutcome reports one call to AttemptMove. Accepted is false exactly
// when Err is set.
type MoveOutcome struct {
	From     Square
	To       Square
	Accepted bool
	Captured *PieceView
	Winner   *Team
	Err      error
}

func (o MoveOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		From     Square     `json:"from"`
		To       Square     `json:"to"`
		Accepted bool       `json:"accepted"`
		Captured *PieceView `json:"captured,omitempty"`
		Winner   *Team      `json:"winner,omitempty"`
		Reason   string     `json:"reason,omitempty"`
	}{o.From, o.To, o.Accepted, o.Captured, o.Winner, ""}
	if o.Err != nil {
		out.Reason = o.Err.Error()
	}
	return json.Marshal(out)
}

// Observer receives every outcome, accepted or not, after the game state has
// settled. It is how a renderer learns about captures and the end of the game.
type Observer interface {
	MoveAttempted(MoveOutcome)
}

type ObserverFunc func(MoveOutcome)

func (f ObserverFunc) MoveAttempted(o MoveOutcome) { f(o) }

type Option func(*Game)

func WithObserver(o Observer) Option {
	return func(g *Game) { g.observer = o }
}

// WithPosition starts the game from b with turn to move instead of the
// standard layout. Reset still returns to the standard layout.
func WithPosition(b *Board, turn Team) Option {
	return func(g *Game) {
		g.board = b
		g.turn = turn
	}
}

var offBoard = Square{File: -1, Rank: -1}

// Game owns the board and is the only thing that mutates it. It is not safe
// for concurrent use; callers serialize access.
type Game struct {
	board    *Board
	turn     Team
	captured [2][]*Piece // indexed by the captured piece's team
	result   Result
	observer Observer
}

func NewGame(opts ...Option) *Game {
	g := &Game{}
	g.Reset()
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reset returns to the standard starting position with White to move.
// The observer is kept.
func (g *Game) Reset() {
	g.board = NewStandardBoard()
	g.turn = White
	g.captured = [2][]*Piece{}
	g.result = InProgress
}

// SelectPiece returns the legal destinations for the piece on sq. The result
// is empty if sq is empty, holds a piece of the side not to move, or the
// game is over.
func (g *Game) SelectPiece(sq Square) []Square {
	p := g.board.Get(sq)
	if p == nil || p.Team != g.turn || g.result != InProgress {
		return nil
	}
	return p.LegalDestinations(g.board)
}

// AttemptMove validates and applies a move. A rejected attempt leaves the
// game untouched and reports why in the outcome's Err.
func (g *Game) AttemptMove(from, to Square) MoveOutcome {
	out := MoveOutcome{From: from, To: to}
	if err := g.validate(from, to); err != nil {
		out.Err = &MoveError{From: from, To: to, Err: err}
		g.notify(out)
		return out
	}

	mover := g.board.Get(from)
	if target := g.board.Get(to); target != nil {
		g.board.Set(to, nil)
		target.Pos = offBoard
		g.captured[target.Team] = append(g.captured[target.Team], target)
		v := target.View()
		out.Captured = &v
		if target.Kind == King {
			g.result = winFor(mover.Team)
			winner := mover.Team
			out.Winner = &winner
		}
	}
	g.board.Set(from, nil)
	g.board.Set(to, mover)

	if g.result == InProgress {
		g.turn = g.turn.Opponent()
	}
	out.Accepted = true
	g.notify(out)
	return out
}

func (g *Game) validate(from, to Square) error {
	if g.result != InProgress {
		return ErrGameOver
	}
	mover := g.board.Get(from)
	if mover == nil {
		return ErrNoPiece
	}
	if mover.Team != g.turn {
		return ErrNotYourTurn
	}
	if g.board.IsOccupiedBy(to, mover.Team) {
		return ErrOccupiedBySameTeam
	}
	if !slices.Contains(mover.LegalDestinations(g.board), to) {
		return ErrIllegalDestination
	}
	return nil
}

func (g *Game) notify(o MoveOutcome) {
	if g.observer != nil {
		g.observer.MoveAttempted(o)
	}
}

func (g *Game) CurrentBoard() Snapshot {
	return g.board.Snapshot()
}

func (g *Game) CurrentTurn() Team {
	return g.turn
}

func (g *Game) Result() Result {
	return g.result
}

// IsTerminal reports the winner once a King has been captured.
func (g *Game) IsTerminal() (Team, bool) {
	switch g.result {
	case WhiteWins:
		return White, true
	case BlackWins:
		return Black, true
	}
	return White, false
}

// Captured lists pieces of team that have been taken, in capture order.
func (g *Game) Captured(team Team) []PieceView {
	views := make([]PieceView, 0, len(g.captured[team]))
	for _, p := range g.captured[team] {
		views = append(views, p.View())
	}
	return views
}

func (g *Game) State() State {
	snap := g.CurrentBoard()
	return State{
		Board:         snap,
		FEN:           snap.FEN(),
		Turn:          g.turn,
		Result:        g.result,
		CapturedWhite: g.Captured(White),
		CapturedBlack: g.Captured(Black),
	}
}
