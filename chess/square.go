package chess

import "fmt"

const BoardSize = 8

// Square is a (file, rank) pair. File 0 is the a-file and rank 0 is White's back rank.
type Square struct {
	File, Rank int
}

func Sq(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

func (s Square) InBounds() bool {
	return s.File >= 0 && s.File < BoardSize && s.Rank >= 0 && s.Rank < BoardSize
}

func (s Square) Offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

func (s Square) index() int {
	return s.Rank*BoardSize + s.File
}

func (s Square) String() string {
	if !s.InBounds() {
		return "invalid"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File, s.Rank+1)
}

// ParseSquare reads algebraic coordinates such as "e2".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("parse square %q: want file letter and rank digit", s)
	}
	sq := Square{File: int(s[0] - 'a'), Rank: int(s[1] - '1')}
	if !sq.InBounds() {
		return Square{}, fmt.Errorf("parse square %q: off the board", s)
	}
	return sq, nil
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.InBounds() {
		return nil, fmt.Errorf("marshal square %d,%d: off the board", s.File, s.Rank)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}
