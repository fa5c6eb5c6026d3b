package xiangqi

// Attacked 判断 target 上的棋子是否能被 bySide 任意一子直接走到（吃掉）。
func Attacked(b Board, target Square, bySide Side) bool {
	if !target.Valid() {
		return false
	}
	for s, pc := range b.Squares {
		if pc == Empty || pc.Side() != bySide {
			continue
		}
		// 士、相不过河，永远够不到对方的帅
		if pt := pc.Type(); pt == PieceAdvisor || pt == PieceElephant {
			if b.Squares[target].Type() == PieceGeneral {
				continue
			}
		}
		if canReach(&b, Square(s), target) {
			return true
		}
	}
	return false
}

// InCheck 判断 side 的帅是否被将军；帅不在盘上时返回 false。
func InCheck(b Board, side Side) bool {
	g := b.FindGeneral(side)
	if g == NoSquare {
		return false
	}
	return Attacked(b, g, side.Opponent())
}
