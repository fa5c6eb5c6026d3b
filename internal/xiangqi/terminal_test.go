package xiangqi

import "testing"

func TestCheckmateScenario(t *testing.T) {
	b := place(t, map[[2]int]Piece{
		{8, 4}: redGeneral,
		{8, 3}: redAdvisor,
		{8, 5}: redAdvisor,
		{5, 4}: blackChariot,
		{9, 3}: blackChariot,
		{9, 4}: blackChariot,
		{9, 5}: blackChariot,
		{7, 3}: blackSoldier,
		{7, 5}: blackSoldier,
	})
	if !InCheck(b, Red) {
		t.Fatalf("red should be in check")
	}
	if !IsCheckmate(b, Red) {
		t.Fatalf("expected checkmate")
	}
	if IsStalemate(b, Red) {
		t.Fatalf("checkmate reported as stalemate")
	}
}

func TestInitialPositionIsNotTerminal(t *testing.T) {
	b := NewInitialBoard()
	for _, side := range []Side{Red, Black} {
		if InCheck(b, side) || IsCheckmate(b, side) || IsStalemate(b, side) {
			t.Fatalf("%v: initial position flagged terminal", side)
		}
	}
	if reason, ok := IsDraw(b, []Board{b}, nil, Red, 0); ok {
		t.Fatalf("initial position drawn: %q", reason)
	}
}

func TestStalemate(t *testing.T) {
	// 红帅困在 (9,3)：(8,3) 被黑车控制，(9,4) 与黑将照面
	b := place(t, map[[2]int]Piece{
		{9, 3}: redGeneral,
		{0, 4}: blackGeneral,
		{8, 0}: blackChariot,
	})
	if InCheck(b, Red) {
		t.Fatalf("red should not be in check")
	}
	if !IsStalemate(b, Red) {
		t.Fatalf("expected stalemate")
	}
	reason, ok := IsDraw(b, []Board{b}, nil, Red, 0)
	if !ok || reason != DrawStalemate {
		t.Fatalf("IsDraw = %q,%v want stalemate", reason, ok)
	}
}

func TestDrawReasons(t *testing.T) {
	bare := place(t, map[[2]int]Piece{
		{9, 4}: redGeneral,
		{0, 3}: blackGeneral,
	})
	initial := NewInitialBoard()

	checking := Move{Moved: redChariot, GaveCheck: true}
	quiet := Move{Moved: blackGeneral}

	tests := []struct {
		name   string
		board  Board
		boards []Board
		moves  []Move
		since  int
		want   DrawReason
	}{
		{"insufficient material", bare, []Board{bare}, nil, 0, DrawInsufficientMaterial},
		{"repetition", initial, []Board{initial, initial, initial}, nil, 0, DrawRepetition},
		{"move limit", initial, []Board{initial}, nil, NoCaptureLimit, DrawMoveLimit},
		{"perpetual check", initial, []Board{initial},
			[]Move{checking, quiet, checking, quiet, checking, quiet}, 0, DrawPerpetualCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IsDraw(tt.board, tt.boards, tt.moves, Red, tt.since)
			if !ok || got != tt.want {
				t.Fatalf("IsDraw = %q,%v want %q", got, ok, tt.want)
			}
		})
	}
}

func TestRepetitionOutranksMoveLimit(t *testing.T) {
	b := NewInitialBoard()
	got, ok := IsDraw(b, []Board{b, b, b}, nil, Red, NoCaptureLimit+5)
	if !ok || got != DrawRepetition {
		t.Fatalf("IsDraw = %q, want repetition first", got)
	}
}

func TestPerpetualCheckNeedsEveryMoveToCheck(t *testing.T) {
	checking := Move{Moved: redChariot, GaveCheck: true}
	quietRed := Move{Moved: redChariot}
	quiet := Move{Moved: blackGeneral}
	moves := []Move{checking, quiet, quietRed, quiet, checking, quiet}
	if PerpetualCheck(moves, PerpetualCheckWindow) {
		t.Fatalf("interrupted checks counted as perpetual")
	}
	if PerpetualCheck(moves[:4], PerpetualCheckWindow) {
		t.Fatalf("short history counted as perpetual")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name   string
		pieces map[[2]int]Piece
		want   bool
	}{
		{"bare generals", map[[2]int]Piece{{9, 4}: redGeneral, {0, 3}: blackGeneral}, true},
		{"general plus advisor each", map[[2]int]Piece{
			{9, 4}: redGeneral, {8, 4}: redAdvisor, {0, 3}: blackGeneral, {1, 4}: MakePiece(Black, PieceAdvisor),
		}, true},
		{"general plus cannon", map[[2]int]Piece{{9, 4}: redGeneral, {7, 1}: redCannon, {0, 3}: blackGeneral}, true},
		{"chariot is enough", map[[2]int]Piece{{9, 4}: redGeneral, {7, 1}: redChariot, {0, 3}: blackGeneral}, false},
		{"two minors is enough", map[[2]int]Piece{
			{9, 4}: redGeneral, {7, 1}: redCannon, {6, 0}: redSoldier, {0, 3}: blackGeneral,
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InsufficientMaterial(place(t, tt.pieces)); got != tt.want {
				t.Fatalf("InsufficientMaterial = %v, want %v", got, tt.want)
			}
		})
	}
}
