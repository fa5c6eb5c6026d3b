package xiangqi

import "testing"

func TestHashDeterministic(t *testing.T) {
	a, b := NewInitialBoard(), NewInitialBoard()
	if a.Hash() != b.Hash() {
		t.Fatalf("same layout, different hash")
	}
	if PositionKey(a, Red) == PositionKey(a, Black) {
		t.Fatalf("side to move not mixed into position key")
	}
	moved := a.Apply(MustSquare(7, 1), MustSquare(7, 4))
	if moved.Hash() == a.Hash() {
		t.Fatalf("hash unchanged after a move")
	}
}

func TestMoveKeyMatchesFullRecompute(t *testing.T) {
	b := NewInitialBoard()
	side := Red
	key := PositionKey(b, side)
	for ply := 0; ply < 24; ply++ {
		moves := LegalMoves(b, side)
		if len(moves) == 0 {
			return
		}
		mv := moves[len(moves)/2]
		key = MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
		b = b.Apply(mv.From, mv.To)
		side = side.Opponent()
		if want := PositionKey(b, side); key != want {
			t.Fatalf("key mismatch at ply %d: got=%d want=%d move=%+v", ply, key, want, mv)
		}
	}
}
