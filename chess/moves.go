package chess

// MoveGenerator produces the destinations a piece may move to. There is one
// implementation per Kind; none of them filter for check.
type MoveGenerator interface {
	Destinations(b *Board, p *Piece) []Square
}

type direction struct{ df, dr int }

var (
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround   = append(append([]direction{}, orthogonals...), diagonals...)
	knightJumps = []direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

type (
	pawnMoves    struct{}
	knightMoves  struct{}
	kingMoves    struct{}
	slidingMoves struct{ dirs []direction }
)

var generators = [...]MoveGenerator{
	Pawn:   pawnMoves{},
	Rook:   slidingMoves{orthogonals},
	Knight: knightMoves{},
	Bishop: slidingMoves{diagonals},
	Queen:  slidingMoves{allAround},
	King:   kingMoves{},
}

type noMoves struct{}

func (noMoves) Destinations(*Board, *Piece) []Square { return nil }

func generatorFor(k Kind) MoveGenerator {
	if k < Pawn || k > King {
		return noMoves{}
	}
	return generators[k]
}

func (pawnMoves) Destinations(b *Board, p *Piece) []Square {
	var dests []Square
	fwd := p.Team.forward()

	one := p.Pos.Offset(0, fwd)
	if b.IsEmpty(one) {
		dests = append(dests, one)
		two := p.Pos.Offset(0, 2*fwd)
		if p.Pos.Rank == p.Team.pawnRank() && b.IsEmpty(two) {
			dests = append(dests, two)
		}
	}

	for _, df := range []int{-1, 1} {
		diag := p.Pos.Offset(df, fwd)
		if b.IsOccupiedByOpponent(diag, p.Team) {
			dests = append(dests, diag)
		}
	}
	return dests
}

func (knightMoves) Destinations(b *Board, p *Piece) []Square {
	return steps(b, p, knightJumps)
}

func (kingMoves) Destinations(b *Board, p *Piece) []Square {
	return steps(b, p, allAround)
}

// steps handles single-hop movers: any in-bounds target not held by a friend.
func steps(b *Board, p *Piece, dirs []direction) []Square {
	var dests []Square
	for _, d := range dirs {
		to := p.Pos.Offset(d.df, d.dr)
		if to.InBounds() && !b.IsOccupiedBy(to, p.Team) {
			dests = append(dests, to)
		}
	}
	return dests
}

// Destinations scans each direction until the edge or the first occupied
// square, which is included only when it holds an opponent.
func (s slidingMoves) Destinations(b *Board, p *Piece) []Square {
	var dests []Square
	for _, d := range s.dirs {
		for to := p.Pos.Offset(d.df, d.dr); to.InBounds(); to = to.Offset(d.df, d.dr) {
			if b.IsEmpty(to) {
				dests = append(dests, to)
				continue
			}
			if b.IsOccupiedByOpponent(to, p.Team) {
				dests = append(dests, to)
			}
			break
		}
	}
	return dests
}
