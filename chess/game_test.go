package chess

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewGameStartsWithWhiteToMove(t *testing.T) {
	g := NewGame()
	if g.CurrentTurn() != White {
		t.Errorf("CurrentTurn() = %s; want White", g.CurrentTurn())
	}
	if _, over := g.IsTerminal(); over {
		t.Error("new game is terminal")
	}
	if diff := cmp.Diff(NewStandardBoard().Snapshot(), g.CurrentBoard()); diff != "" {
		t.Errorf("initial board mismatch (-want +got):\n%s", diff)
	}
}

func TestOpeningDoubleStep(t *testing.T) {
	g := NewGame()
	out := g.AttemptMove(mustSq(t, "e2"), mustSq(t, "e4"))
	if !out.Accepted || out.Err != nil {
		t.Fatalf("e2-e4 rejected: %v", out.Err)
	}
	if out.Captured != nil || out.Winner != nil {
		t.Errorf("unexpected events: captured=%v winner=%v", out.Captured, out.Winner)
	}
	snap := g.CurrentBoard()
	if snap.At(mustSq(t, "e2")) != nil {
		t.Error("e2 still occupied")
	}
	if got := snap.At(mustSq(t, "e4")); got == nil || *got != (PieceView{Pawn, White}) {
		t.Errorf("e4 = %v; want White Pawn", got)
	}
	if g.CurrentTurn() != Black {
		t.Errorf("CurrentTurn() = %s; want Black", g.CurrentTurn())
	}
}

func TestKnightCannotLandOnOwnBishop(t *testing.T) {
	b := boardWith(t,
		placement{Knight, Black, "b8"},
		placement{Bishop, Black, "c6"},
		placement{King, Black, "e8"},
		placement{King, White, "e1"},
	)
	g := NewGame(WithPosition(b, Black))
	before := g.State()

	out := g.AttemptMove(mustSq(t, "b8"), mustSq(t, "c6"))
	if out.Accepted {
		t.Fatal("knight moved onto its own bishop")
	}
	if !errors.Is(out.Err, ErrInvalidMove) || !errors.Is(out.Err, ErrOccupiedBySameTeam) {
		t.Errorf("Err = %v; want ErrOccupiedBySameTeam", out.Err)
	}
	if diff := cmp.Diff(before, g.State()); diff != "" {
		t.Errorf("rejected move changed state (-before +after):\n%s", diff)
	}
}

func TestQueenCapturesKingEndsGame(t *testing.T) {
	b := boardWith(t,
		placement{Queen, White, "d1"},
		placement{King, White, "e1"},
		placement{King, Black, "d8"},
		placement{Pawn, Black, "a7"},
	)
	g := NewGame(WithPosition(b, White))

	out := g.AttemptMove(mustSq(t, "d1"), mustSq(t, "d8"))
	if !out.Accepted {
		t.Fatalf("capture rejected: %v", out.Err)
	}
	if out.Captured == nil || *out.Captured != (PieceView{King, Black}) {
		t.Errorf("Captured = %v; want Black King", out.Captured)
	}
	if out.Winner == nil || *out.Winner != White {
		t.Errorf("Winner = %v; want White", out.Winner)
	}
	if winner, over := g.IsTerminal(); !over || winner != White {
		t.Errorf("IsTerminal() = %s, %v; want White, true", winner, over)
	}
	if g.Result() != WhiteWins {
		t.Errorf("Result() = %s; want White wins", g.Result())
	}
	if diff := cmp.Diff([]PieceView{{King, Black}}, g.Captured(Black)); diff != "" {
		t.Errorf("Captured(Black) mismatch (-want +got):\n%s", diff)
	}
	if got := g.Captured(White); len(got) != 0 {
		t.Errorf("Captured(White) = %v; want empty", got)
	}
	if g.CurrentTurn() != White {
		t.Errorf("turn flipped after the game ended: %s", g.CurrentTurn())
	}

	after := g.State()
	for _, mv := range [][2]string{{"a7", "a6"}, {"d8", "d7"}, {"e1", "e2"}} {
		out := g.AttemptMove(mustSq(t, mv[0]), mustSq(t, mv[1]))
		if out.Accepted || !errors.Is(out.Err, ErrGameOver) {
			t.Errorf("%s-%s after game over: accepted=%v err=%v", mv[0], mv[1], out.Accepted, out.Err)
		}
	}
	if diff := cmp.Diff(after, g.State()); diff != "" {
		t.Errorf("state changed after game over (-want +got):\n%s", diff)
	}
	if got := g.SelectPiece(mustSq(t, "d8")); len(got) != 0 {
		t.Errorf("SelectPiece after game over = %v; want empty", got)
	}
}

func TestRejectedMovesLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name     string
		from, to Square
		want     error
	}{
		{"empty source", Sq(4, 3), Sq(4, 4), ErrNoPiece},
		{"black moves first", Sq(4, 6), Sq(4, 4), ErrNotYourTurn},
		{"pawn jumps three", Sq(4, 1), Sq(4, 4), ErrIllegalDestination},
		{"rook onto own pawn", Sq(0, 0), Sq(0, 1), ErrOccupiedBySameTeam},
		{"knight off the board", Sq(1, 0), Sq(-1, 1), ErrIllegalDestination},
		{"source off the board", Sq(9, 9), Sq(4, 4), ErrNoPiece},
		{"bishop through pawn", Sq(2, 0), Sq(4, 2), ErrIllegalDestination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []MoveOutcome
			g := NewGame(WithObserver(ObserverFunc(func(o MoveOutcome) { seen = append(seen, o) })))
			before := g.State()

			out := g.AttemptMove(tt.from, tt.to)
			if out.Accepted {
				t.Fatal("move accepted")
			}
			if !errors.Is(out.Err, tt.want) {
				t.Errorf("Err = %v; want %v", out.Err, tt.want)
			}
			var me *MoveError
			if !errors.As(out.Err, &me) || me.From != tt.from || me.To != tt.to {
				t.Errorf("Err = %#v; want *MoveError for the attempted squares", out.Err)
			}
			if diff := cmp.Diff(before, g.State()); diff != "" {
				t.Errorf("state changed (-before +after):\n%s", diff)
			}
			if len(seen) != 1 || seen[0].Accepted {
				t.Errorf("observer saw %d outcomes; want one rejection", len(seen))
			}
		})
	}
}

func TestTurnAlternatesOnlyOnAcceptedMoves(t *testing.T) {
	g := NewGame()
	steps := []struct {
		from, to string
		accept   bool
		turn     Team
	}{
		{"e2", "e4", true, Black},
		{"e4", "e5", false, Black},
		{"e7", "e5", true, White},
		{"e7", "e6", false, White},
		{"g1", "f3", true, Black},
		{"b8", "c6", true, White},
		{"f3", "e5", true, Black},
		{"c6", "e5", true, White},
	}
	for i, s := range steps {
		out := g.AttemptMove(mustSq(t, s.from), mustSq(t, s.to))
		if out.Accepted != s.accept {
			t.Fatalf("step %d %s-%s: accepted=%v (err %v); want %v", i, s.from, s.to, out.Accepted, out.Err, s.accept)
		}
		if g.CurrentTurn() != s.turn {
			t.Fatalf("step %d %s-%s: turn = %s; want %s", i, s.from, s.to, g.CurrentTurn(), s.turn)
		}
	}
	if diff := cmp.Diff([]PieceView{{Pawn, Black}}, g.Captured(Black)); diff != "" {
		t.Errorf("Captured(Black) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]PieceView{{Knight, White}}, g.Captured(White)); diff != "" {
		t.Errorf("Captured(White) mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectPiece(t *testing.T) {
	g := NewGame()
	tests := []struct {
		name string
		sq   Square
		want []string
	}{
		{"own pawn", mustSq(t, "e2"), []string{"e3", "e4"}},
		{"own knight", mustSq(t, "g1"), []string{"f3", "h3"}},
		{"opponent pawn", mustSq(t, "e7"), nil},
		{"empty square", mustSq(t, "e4"), nil},
		{"off board", Sq(8, 8), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSquares(t, g.SelectPiece(tt.sq), squares(t, tt.want...))
		})
	}
}

func TestCapturedPieceLeavesBoard(t *testing.T) {
	b := boardWith(t,
		placement{Rook, White, "a1"},
		placement{Knight, Black, "a5"},
		placement{King, White, "h1"},
		placement{King, Black, "h8"},
	)
	knight := b.Get(mustSq(t, "a5"))
	g := NewGame(WithPosition(b, White))

	out := g.AttemptMove(mustSq(t, "a1"), mustSq(t, "a5"))
	if !out.Accepted {
		t.Fatalf("capture rejected: %v", out.Err)
	}
	if out.Winner != nil {
		t.Errorf("Winner = %v; want none", out.Winner)
	}
	if knight.Pos.InBounds() {
		t.Errorf("captured knight still claims %s", knight.Pos)
	}
	for _, p := range g.board.Pieces() {
		if p == knight {
			t.Fatal("captured knight still on the board")
		}
		if g.board.Get(p.Pos) != p {
			t.Errorf("%s stores %s but is not indexed there", p.View().Name(), p.Pos)
		}
	}
	if g.CurrentTurn() != Black {
		t.Errorf("CurrentTurn() = %s; want Black", g.CurrentTurn())
	}
}

func TestReset(t *testing.T) {
	g := NewGame()
	for _, mv := range [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}} {
		g.AttemptMove(mustSq(t, mv[0]), mustSq(t, mv[1]))
	}
	g.Reset()

	want := NewGame().State()
	if diff := cmp.Diff(want, g.State()); diff != "" {
		t.Errorf("Reset() state mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveOutcomeJSON(t *testing.T) {
	g := NewGame()
	bad := g.AttemptMove(mustSq(t, "e2"), mustSq(t, "e5"))
	b, err := json.Marshal(bad)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := map[string]any{
		"from":     "e2",
		"to":       "e5",
		"accepted": false,
		"reason":   "move e2-e5: invalid move: destination not reachable",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}
