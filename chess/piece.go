package chess

import "fmt"

type Team int

const (
	White Team = iota
	Black
)

func (t Team) String() string {
	if t == White {
		return "White"
	}
	return "Black"
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	return 1 - t
}

// forward is the rank direction pawns of this team advance in.
func (t Team) forward() int {
	if t == White {
		return 1
	}
	return -1
}

func (t Team) pawnRank() int {
	if t == White {
		return 1
	}
	return BoardSize - 2
}

func (t Team) backRank() int {
	if t == White {
		return 0
	}
	return BoardSize - 1
}

func (t Team) MarshalText() ([]byte, error) {
	switch t {
	case White:
		return []byte("white"), nil
	case Black:
		return []byte("black"), nil
	}
	return nil, fmt.Errorf("marshal team %d: unknown", int(t))
}

func (t *Team) UnmarshalText(b []byte) error {
	switch string(b) {
	case "white":
		*t = White
	case "black":
		*t = Black
	default:
		return fmt.Errorf("unmarshal team %q: unknown", b)
	}
	return nil
}

type Kind int

const (
	Pawn Kind = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindNames = [...]string{"Pawn", "Rook", "Knight", "Bishop", "Queen", "King"}

func (k Kind) String() string {
	if k < Pawn || k > King {
		return "Unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < Pawn || k > King {
		return nil, fmt.Errorf("marshal kind %d: unknown", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unmarshal kind %q: unknown", b)
}

// Piece is a live piece on the board. Its Pos always matches the square the
// Board stores it under; once captured it is no longer addressable.
type Piece struct {
	Kind Kind
	Team Team
	Pos  Square
}

// View drops the position, which is all a renderer needs to draw a square.
func (p *Piece) View() PieceView {
	return PieceView{Kind: p.Kind, Team: p.Team}
}

// LegalDestinations returns the squares p may move to on b under this game's
// simplified rules. It is recomputed on every call.
func (p *Piece) LegalDestinations(b *Board) []Square {
	return generatorFor(p.Kind).Destinations(b, p)
}

// PieceView is the read-only {kind, team} pair handed to presentation layers.
type PieceView struct {
	Kind Kind `json:"kind"`
	Team Team `json:"team"`
}

var (
	blackSymbols = [...]string{"♟", "♜", "♞", "♝", "♛", "♚"}
	whiteSymbols = [...]string{"♙", "♖", "♘", "♗", "♕", "♔"}
)

func (v PieceView) String() string {
	if v.Kind < Pawn || v.Kind > King {
		return " "
	}
	if v.Team == White {
		return whiteSymbols[v.Kind]
	}
	return blackSymbols[v.Kind]
}

// Name is "White Queen" style text for status panels.
func (v PieceView) Name() string {
	return fmt.Sprintf("%s %s", v.Team, v.Kind)
}
