package xiangqi

// DrawReason 和棋原因。
type DrawReason string

const (
	DrawNone                 DrawReason = ""
	DrawStalemate            DrawReason = "stalemate"
	DrawRepetition           DrawReason = "repetition"
	DrawMoveLimit            DrawReason = "move limit"
	DrawPerpetualCheck       DrawReason = "perpetual check"
	DrawInsufficientMaterial DrawReason = "insufficient material"
)

const (
	RepetitionCount       = 3
	NoCaptureLimit        = 120 // 双方各 60 回合未吃子
	PerpetualCheckWindow  = 6
	perpetualCheckMinimum = PerpetualCheckWindow / 2
)

// IsCheckmate 被将军且没有任何合法着法能解将。
func IsCheckmate(b Board, side Side) bool {
	return InCheck(b, side) && !HasLegalMove(b, side)
}

// IsStalemate 未被将军但无子可动（困毙）。
func IsStalemate(b Board, side Side) bool {
	return !InCheck(b, side) && !HasLegalMove(b, side)
}

// InsufficientMaterial 双方都只剩帅，或帅加一个非车的子。
func InsufficientMaterial(b Board) bool {
	return insufficientFor(&b, Red) && insufficientFor(&b, Black)
}

func insufficientFor(b *Board, side Side) bool {
	hasGeneral := false
	others := 0
	var other PieceType
	for _, pc := range b.Squares {
		if pc == Empty || pc.Side() != side {
			continue
		}
		if pc.Type() == PieceGeneral {
			hasGeneral = true
			continue
		}
		others++
		other = pc.Type()
	}
	if !hasGeneral {
		return false
	}
	switch others {
	case 0:
		return true
	case 1:
		return other != PieceChariot
	}
	return false
}

// Repetition 最新局面在历史中出现至少 count 次。
func Repetition(boards []Board, count int) bool {
	if len(boards) < count {
		return false
	}
	last := boards[len(boards)-1].Hash()
	seen := 0
	for i := len(boards) - 1; i >= 0; i-- {
		if boards[i].Hash() == last {
			seen++
			if seen >= count {
				return true
			}
		}
	}
	return false
}

// PerpetualCheck 在最近 window 个半回合里，某一方走的每一步都将军，且至少 window/2 步。
// 依赖每步记录下来的 GaveCheck，而不是事后推断。
func PerpetualCheck(moves []Move, window int) bool {
	if window <= 0 || len(moves) < window {
		return false
	}
	recent := moves[len(moves)-window:]
	for _, side := range [2]Side{Red, Black} {
		checks, total := 0, 0
		for _, m := range recent {
			if m.Moved.Side() != side {
				continue
			}
			total++
			if m.GaveCheck {
				checks++
			}
		}
		if total >= window/2 && checks == total {
			return true
		}
	}
	return false
}

// IsDraw 按优先级返回第一个成立的和棋原因：困毙、重复局面、未吃子步数、长将、子力不足。
func IsDraw(b Board, boards []Board, moves []Move, side Side, movesSinceCapture int) (DrawReason, bool) {
	if IsStalemate(b, side) {
		return DrawStalemate, true
	}
	if Repetition(boards, RepetitionCount) {
		return DrawRepetition, true
	}
	if movesSinceCapture >= NoCaptureLimit {
		return DrawMoveLimit, true
	}
	if PerpetualCheck(moves, PerpetualCheckWindow) {
		return DrawPerpetualCheck, true
	}
	if InsufficientMaterial(b) {
		return DrawInsufficientMaterial, true
	}
	return DrawNone, false
}
