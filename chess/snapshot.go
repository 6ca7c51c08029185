package chess

import (
	"encoding/json"

	nchess "github.com/notnil/chess"
)

// Snapshot is a detached copy of board occupancy. Mutating the game after
// taking one does not change it.
type Snapshot [BoardSize * BoardSize]*PieceView

func (s Snapshot) At(sq Square) *PieceView {
	if !sq.InBounds() {
		return nil
	}
	return s[sq.index()]
}

// MarshalJSON encodes only occupied squares, keyed by algebraic name.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	m := make(map[string]PieceView)
	for i, v := range s {
		if v != nil {
			m[Sq(i%BoardSize, i/BoardSize).String()] = *v
		}
	}
	return json.Marshal(m)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var m map[string]PieceView
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = Snapshot{}
	for name, v := range m {
		sq, err := ParseSquare(name)
		if err != nil {
			return err
		}
		v := v
		s[sq.index()] = &v
	}
	return nil
}

var fenPieces = [2][6]nchess.Piece{
	White: {nchess.WhitePawn, nchess.WhiteRook, nchess.WhiteKnight, nchess.WhiteBishop, nchess.WhiteQueen, nchess.WhiteKing},
	Black: {nchess.BlackPawn, nchess.BlackRook, nchess.BlackKnight, nchess.BlackBishop, nchess.BlackQueen, nchess.BlackKing},
}

// FEN renders the piece-placement field of a FEN record, for example
// "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" for the starting position.
func (s Snapshot) FEN() string {
	m := make(map[nchess.Square]nchess.Piece)
	for i, v := range s {
		if v == nil {
			continue
		}
		sq := nchess.NewSquare(nchess.File(i%BoardSize), nchess.Rank(i/BoardSize))
		m[sq] = fenPieces[v.Team][v.Kind]
	}
	return nchess.NewBoard(m).String()
}

// State is the read-only view of a whole game handed to renderers and the API.
type State struct {
	Board         Snapshot    `json:"board"`
	FEN           string      `json:"fen"`
	Turn          Team        `json:"turn"`
	Result        Result      `json:"result"`
	CapturedWhite []PieceView `json:"capturedWhite"`
	CapturedBlack []PieceView `json:"capturedBlack"`
}
