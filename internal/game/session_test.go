package game

import (
	"errors"
	"testing"

	"xiangqi/internal/xiangqi"
)

func sq(r, c int) xiangqi.Square { return xiangqi.MustSquare(r, c) }

func TestNewSession(t *testing.T) {
	s := New("g1", xiangqi.Black)
	if s.SideToMove != xiangqi.Red {
		t.Fatalf("side to move = %v, want red", s.SideToMove)
	}
	if s.EngineSide() != xiangqi.Red {
		t.Fatalf("engine side = %v, want red", s.EngineSide())
	}
	if s.Status != StatusInProgress || s.InCheck {
		t.Fatalf("fresh session status = %s in_check=%v", s.Status, s.InCheck)
	}
	if len(s.Boards) != 1 || s.Boards[0] != xiangqi.NewInitialBoard() {
		t.Fatalf("board history should start with the initial board")
	}
}

func TestApplyRejections(t *testing.T) {
	s := New("g1", xiangqi.Red)
	cases := []struct {
		name     string
		from, to xiangqi.Square
	}{
		{"empty square", sq(5, 0), sq(4, 0)},
		{"opponent piece", sq(3, 0), sq(4, 0)},
		{"illegal geometry", sq(9, 0), sq(5, 1)},
		{"off board", xiangqi.NoSquare, sq(4, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := s.Clone()
			if _, err := s.Apply(tc.from, tc.to); !errors.Is(err, ErrIllegalMove) {
				t.Fatalf("err = %v, want ErrIllegalMove", err)
			}
			if s.Board != before.Board || len(s.Moves) != 0 || s.SideToMove != before.SideToMove {
				t.Fatalf("rejected move changed state")
			}
		})
	}
}

func TestApplyAndUndoRoundTrip(t *testing.T) {
	s := New("g1", xiangqi.Red)
	side := s.SideToMove
	for ply := 0; ply < 30; ply++ {
		moves := xiangqi.LegalMoves(s.Board, side)
		if len(moves) == 0 || s.IsOver() {
			return
		}
		mv := moves[(ply*7)%len(moves)]

		before := s.Clone()
		applied, err := s.Apply(mv.From, mv.To)
		if err != nil {
			t.Fatalf("ply %d: apply %v->%v: %v", ply, mv.From, mv.To, err)
		}
		if applied.Captured != before.Board.At(mv.To) {
			t.Fatalf("ply %d: captured piece not recorded", ply)
		}
		if len(s.Boards) != len(s.Moves)+1 {
			t.Fatalf("ply %d: board history out of step", ply)
		}

		if err := s.Undo(1); err != nil {
			t.Fatalf("ply %d: undo: %v", ply, err)
		}
		if s.Board != before.Board || s.SideToMove != before.SideToMove ||
			s.InCheck != before.InCheck || s.Status != before.Status ||
			s.MovesSinceCapture != before.MovesSinceCapture || len(s.Moves) != len(before.Moves) {
			t.Fatalf("ply %d: undo did not restore the prior state", ply)
		}

		if _, err := s.Apply(mv.From, mv.To); err != nil {
			t.Fatalf("ply %d: re-apply: %v", ply, err)
		}
		side = s.SideToMove
	}
}

func TestMovesSinceCapture(t *testing.T) {
	s := New("g1", xiangqi.Red)
	steps := [][2]xiangqi.Square{
		{sq(7, 1), sq(7, 4)}, // 炮二平五
		{sq(0, 1), sq(2, 2)}, // 马8进7
		{sq(7, 4), sq(3, 4)}, // 炮五进四 吃卒
	}
	want := []int{1, 2, 0}
	for i, st := range steps {
		if _, err := s.Apply(st[0], st[1]); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.MovesSinceCapture != want[i] {
			t.Fatalf("step %d: moves since capture = %d, want %d", i, s.MovesSinceCapture, want[i])
		}
	}
	if err := s.Undo(1); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.MovesSinceCapture != 2 {
		t.Fatalf("after undo moves since capture = %d, want 2", s.MovesSinceCapture)
	}
}

func TestUndoErrors(t *testing.T) {
	s := New("g1", xiangqi.Red)
	if err := s.Undo(1); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("undo on empty history err = %v", err)
	}
	if err := s.Undo(0); !errors.Is(err, ErrInvalidUndoCount) {
		t.Fatalf("undo(0) err = %v", err)
	}
	if _, err := s.Apply(sq(6, 0), sq(5, 0)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.Undo(2); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("undo(2) with one move err = %v", err)
	}
	if len(s.Moves) != 1 {
		t.Fatalf("failed undo changed history")
	}
}

func TestCheckmateIsAbsorbing(t *testing.T) {
	var b xiangqi.Board
	red := func(pt xiangqi.PieceType) xiangqi.Piece { return xiangqi.MakePiece(xiangqi.Red, pt) }
	black := func(pt xiangqi.PieceType) xiangqi.Piece { return xiangqi.MakePiece(xiangqi.Black, pt) }
	b.Put(sq(9, 4), red(xiangqi.PieceGeneral))
	b.Put(sq(0, 3), black(xiangqi.PieceGeneral))
	b.Put(sq(8, 0), black(xiangqi.PieceChariot))
	b.Put(sq(2, 8), black(xiangqi.PieceChariot))

	// 黑车 (2,8) 进到 (9,8) 将军；(8,0) 车控制第 8 行，红帅无路可走
	s := NewFromPosition("g1", xiangqi.Red, b, xiangqi.Black)
	mv, err := s.Apply(sq(2, 8), sq(9, 8))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !mv.GaveCheck {
		t.Fatalf("check flag not recorded")
	}
	if !s.IsCheckmate() || s.Winner != xiangqi.Black {
		t.Fatalf("status = %s winner = %v, want black checkmate", s.Status, s.Winner)
	}
	if _, err := s.Apply(sq(9, 4), sq(8, 4)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("apply after mate err = %v, want ErrGameOver", err)
	}

	if err := s.Undo(1); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.IsOver() || s.SideToMove != xiangqi.Black {
		t.Fatalf("undo should reopen the game for black, status=%s", s.Status)
	}
}

func TestDrawByInsufficientMaterial(t *testing.T) {
	var b xiangqi.Board
	b.Put(sq(9, 4), xiangqi.MakePiece(xiangqi.Red, xiangqi.PieceGeneral))
	b.Put(sq(0, 3), xiangqi.MakePiece(xiangqi.Black, xiangqi.PieceGeneral))
	s := NewFromPosition("g1", xiangqi.Red, b, xiangqi.Red)
	if s.Status != StatusDrawn || s.DrawReason != xiangqi.DrawInsufficientMaterial {
		t.Fatalf("status = %s reason = %q", s.Status, s.DrawReason)
	}
	if _, err := s.Apply(sq(9, 4), sq(8, 4)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("apply on drawn game err = %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New("g1", xiangqi.Red)
	c := s.Clone()
	if _, err := s.Apply(sq(6, 0), sq(5, 0)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(c.Moves) != 0 || c.Board != xiangqi.NewInitialBoard() {
		t.Fatalf("clone shares state with the original")
	}
}
