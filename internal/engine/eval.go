package engine

import "xiangqi/internal/xiangqi"

// 子力价值，以兵为 100。帅不计分，失去帅由将死分数体现。
var pieceValue = [...]int{
	xiangqi.PieceNone:     0,
	xiangqi.PieceGeneral:  0,
	xiangqi.PieceAdvisor:  200,
	xiangqi.PieceElephant: 200,
	xiangqi.PieceHorse:    400,
	xiangqi.PieceChariot:  900,
	xiangqi.PieceCannon:   450,
	xiangqi.PieceSoldier:  100,
}

const (
	crossedSoldierBonus = 50
	centerFileWeight    = 4 // 每靠近中路一列
	centerRankBonus     = 10
)

// PieceValue 导出给排序和外部展示用。
func PieceValue(pt xiangqi.PieceType) int {
	if pt < 0 || int(pt) >= len(pieceValue) {
		return 0
	}
	return pieceValue[pt]
}

// Evaluate 从 side 的视角打分：正数对 side 有利（negamax 约定）。
func Evaluate(b xiangqi.Board, side xiangqi.Side) int {
	score := 0
	for s, pc := range b.Squares {
		if pc == xiangqi.Empty {
			continue
		}
		sq := xiangqi.Square(s)
		val := pieceValue[pc.Type()] + positionalBonus(pc, sq.Row(), sq.Col())
		if pc.Side() == side {
			score += val
		} else {
			score -= val
		}
	}
	return score
}

func positionalBonus(pc xiangqi.Piece, row, col int) int {
	pt := pc.Type()
	bonus := 0
	switch pt {
	case xiangqi.PieceSoldier:
		if crossed(pc.Side(), row) {
			bonus += crossedSoldierBonus
			bonus += centerFile(col)
		}
	case xiangqi.PieceHorse, xiangqi.PieceCannon, xiangqi.PieceChariot:
		bonus += centerFile(col)
		// 河口附近的中间几行
		if row >= 3 && row <= 6 {
			bonus += centerRankBonus
		}
	}
	return bonus
}

func centerFile(col int) int {
	d := col - xiangqi.Cols/2
	if d < 0 {
		d = -d
	}
	return (xiangqi.Cols/2 - d) * centerFileWeight
}

func crossed(side xiangqi.Side, row int) bool {
	if side == xiangqi.Red {
		return row <= 4
	}
	return row >= 5
}

// Describe 把走子方视角的分数归成几档，用于给人看的局面评价。
func Describe(score int) string {
	switch {
	case score >= 500:
		return "winning"
	case score >= 200:
		return "better"
	case score > -200:
		return "equal"
	case score > -500:
		return "worse"
	}
	return "losing"
}
