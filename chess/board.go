// Package chess implements a simplified chess rules engine. There is no check
// detection: the game ends the moment a King is captured.
package chess

// Board maps each square to the piece standing on it, if any.
// Out-of-bounds queries answer empty/false rather than failing, so move
// generators never have to branch on the board edge themselves.
type Board struct {
	squares [BoardSize * BoardSize]*Piece
}

var backRank = [BoardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func NewBoard() *Board {
	return &Board{}
}

// NewStandardBoard returns the usual starting position: White on ranks 0
// and 1, Black mirrored on ranks 7 and 6.
func NewStandardBoard() *Board {
	b := NewBoard()
	for _, team := range []Team{White, Black} {
		for file, kind := range backRank {
			b.Place(kind, team, Sq(file, team.backRank()))
			b.Place(Pawn, team, Sq(file, team.pawnRank()))
		}
	}
	return b
}

func (b *Board) Get(sq Square) *Piece {
	if !sq.InBounds() {
		return nil
	}
	return b.squares[sq.index()]
}

// Set overwrites the slot at sq and updates the piece's stored position.
// The caller keeps the one-piece-per-square invariant by clearing the
// piece's old square itself.
func (b *Board) Set(sq Square, p *Piece) {
	if !sq.InBounds() {
		return
	}
	if p != nil {
		p.Pos = sq
	}
	b.squares[sq.index()] = p
}

// Place creates a piece and puts it on sq, replacing whatever stood there.
func (b *Board) Place(kind Kind, team Team, sq Square) *Piece {
	if !sq.InBounds() {
		return nil
	}
	p := &Piece{Kind: kind, Team: team}
	b.Set(sq, p)
	return p
}

func (b *Board) IsEmpty(sq Square) bool {
	return sq.InBounds() && b.squares[sq.index()] == nil
}

func (b *Board) IsOccupiedBy(sq Square, team Team) bool {
	p := b.Get(sq)
	return p != nil && p.Team == team
}

func (b *Board) IsOccupiedByOpponent(sq Square, team Team) bool {
	p := b.Get(sq)
	return p != nil && p.Team != team
}

// Pieces lists live pieces in square order, a1 through h8.
func (b *Board) Pieces() []*Piece {
	var pieces []*Piece
	for _, p := range b.squares {
		if p != nil {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Snapshot copies the occupancy into a value the caller may keep.
func (b *Board) Snapshot() Snapshot {
	var s Snapshot
	for i, p := range b.squares {
		if p != nil {
			v := p.View()
			s[i] = &v
		}
	}
	return s
}
