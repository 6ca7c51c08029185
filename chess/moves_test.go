package chess

import "testing"

type placement struct {
	kind Kind
	team Team
	sq   string
}

func boardWith(t *testing.T, pieces ...placement) *Board {
	t.Helper()
	b := NewBoard()
	for _, p := range pieces {
		b.Place(p.kind, p.team, mustSq(t, p.sq))
	}
	return b
}

func TestLegalDestinations(t *testing.T) {
	tests := []struct {
		name   string
		board  func(t *testing.T) *Board
		square string
		want   []string
	}{
		{
			name:   "white pawn single and double step from start",
			board:  func(*testing.T) *Board { return NewStandardBoard() },
			square: "e2",
			want:   []string{"e3", "e4"},
		},
		{
			name:   "black pawn advances toward rank one",
			board:  func(*testing.T) *Board { return NewStandardBoard() },
			square: "d7",
			want:   []string{"d6", "d5"},
		},
		{
			name: "pawn blocked directly ahead has no forward moves",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, White, "e2"}, placement{Knight, Black, "e3"})
			},
			square: "e2",
		},
		{
			name: "pawn double step needs both squares empty",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, White, "e2"}, placement{Knight, Black, "e4"})
			},
			square: "e2",
			want:   []string{"e3"},
		},
		{
			name: "pawn off its starting rank steps once",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, White, "e3"})
			},
			square: "e3",
			want:   []string{"e4"},
		},
		{
			name: "black pawn off its starting rank steps once",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, Black, "c5"})
			},
			square: "c5",
			want:   []string{"c4"},
		},
		{
			name: "pawn captures diagonally only onto opponents",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{Pawn, White, "d4"},
					placement{Bishop, Black, "c5"},
					placement{Bishop, White, "e5"},
				)
			},
			square: "d4",
			want:   []string{"d5", "c5"},
		},
		{
			name: "pawn on the edge file captures inward",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, White, "h2"}, placement{Rook, Black, "g3"})
			},
			square: "h2",
			want:   []string{"h3", "h4", "g3"},
		},
		{
			name: "pawn on the last rank has nowhere to go",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Pawn, White, "a8"})
			},
			square: "a8",
		},
		{
			name:   "knight from the back rank jumps over pawns",
			board:  func(*testing.T) *Board { return NewStandardBoard() },
			square: "b1",
			want:   []string{"a3", "c3"},
		},
		{
			name: "knight in the centre",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{Knight, White, "d4"})
			},
			square: "d4",
			want:   []string{"b3", "b5", "c2", "c6", "e2", "e6", "f3", "f5"},
		},
		{
			name: "knight in the corner skips own pieces and captures",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{Knight, Black, "a8"},
					placement{Pawn, Black, "b6"},
					placement{Pawn, White, "c7"},
				)
			},
			square: "a8",
			want:   []string{"c7"},
		},
		{
			name: "bishop stops before own piece and on opponent",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{Bishop, White, "d4"},
					placement{Pawn, White, "f6"},
					placement{Pawn, Black, "b2"},
					placement{Pawn, Black, "a1"},
				)
			},
			square: "d4",
			want:   []string{"e5", "e3", "f2", "g1", "c5", "b6", "a7", "c3", "b2"},
		},
		{
			name: "rook slides orthogonally",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{Rook, White, "a1"},
					placement{Pawn, Black, "a4"},
					placement{Knight, White, "d1"},
				)
			},
			square: "a1",
			want:   []string{"a2", "a3", "a4", "b1", "c1"},
		},
		{
			name:   "queen boxed in at the start",
			board:  func(*testing.T) *Board { return NewStandardBoard() },
			square: "d1",
		},
		{
			name: "queen combines rook and bishop lines",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{Queen, Black, "h8"},
					placement{Pawn, Black, "h6"},
					placement{Pawn, White, "f8"},
					placement{Pawn, White, "f6"},
				)
			},
			square: "h8",
			want:   []string{"h7", "g8", "f8", "g7", "f6"},
		},
		{
			name:   "king boxed in at the start",
			board:  func(*testing.T) *Board { return NewStandardBoard() },
			square: "e1",
		},
		{
			name: "king steps one square and may step next to the enemy",
			board: func(t *testing.T) *Board {
				return boardWith(t,
					placement{King, White, "e4"},
					placement{King, Black, "e6"},
					placement{Pawn, White, "d3"},
					placement{Pawn, Black, "f5"},
				)
			},
			square: "e4",
			want:   []string{"d4", "f4", "e5", "e3", "d5", "f5", "f3"},
		},
		{
			name: "king in the corner",
			board: func(t *testing.T) *Board {
				return boardWith(t, placement{King, Black, "h8"}, placement{Pawn, Black, "g7"})
			},
			square: "h8",
			want:   []string{"g8", "h7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.board(t)
			p := b.Get(mustSq(t, tt.square))
			if p == nil {
				t.Fatalf("no piece on %s", tt.square)
			}
			assertSquares(t, p.LegalDestinations(b), squares(t, tt.want...))
		})
	}
}

func TestQueenOnEmptyBoardReaches27Squares(t *testing.T) {
	b := boardWith(t, placement{Queen, White, "d4"})
	if got := len(b.Get(mustSq(t, "d4")).LegalDestinations(b)); got != 27 {
		t.Errorf("len(destinations) = %d; want 27", got)
	}
}

// Every generated destination is on the board and never holds a friend, and
// sliders never see past the first occupied square.
func TestDestinationInvariants(t *testing.T) {
	g := NewGame()
	for _, mv := range [][2]string{
		{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}, {"d8", "d5"},
		{"b1", "c3"}, {"d5", "a5"}, {"f1", "b5"}, {"c7", "c6"},
		{"d1", "f3"}, {"g8", "f6"},
	} {
		if out := g.AttemptMove(mustSq(t, mv[0]), mustSq(t, mv[1])); !out.Accepted {
			t.Fatalf("setup move %s-%s rejected: %v", mv[0], mv[1], out.Err)
		}
	}

	for _, board := range []*Board{NewStandardBoard(), g.board} {
		for _, p := range board.Pieces() {
			for _, to := range p.LegalDestinations(board) {
				if !to.InBounds() {
					t.Errorf("%s on %s: off-board destination %v", p.View().Name(), p.Pos, to)
				}
				if board.IsOccupiedBy(to, p.Team) {
					t.Errorf("%s on %s: destination %s holds own piece", p.View().Name(), p.Pos, to)
				}
				if gen, ok := generatorFor(p.Kind).(slidingMoves); ok {
					checkSlidingPath(t, board, p, to, gen)
				}
			}
		}
	}
}

func checkSlidingPath(t *testing.T, b *Board, p *Piece, to Square, gen slidingMoves) {
	t.Helper()
	df, dr := sign(to.File-p.Pos.File), sign(to.Rank-p.Pos.Rank)
	for sq := p.Pos.Offset(df, dr); sq != to; sq = sq.Offset(df, dr) {
		if !b.IsEmpty(sq) {
			t.Errorf("%s on %s reaches %s through occupied %s", p.View().Name(), p.Pos, to, sq)
			return
		}
	}
	for _, d := range gen.dirs {
		if d.df == df && d.dr == dr {
			return
		}
	}
	t.Errorf("%s on %s reaches %s along a direction it does not slide", p.View().Name(), p.Pos, to)
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
