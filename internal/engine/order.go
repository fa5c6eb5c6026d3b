package engine

import (
	"sort"

	"xiangqi/internal/xiangqi"
)

// orderMoves 吃子在前，按被吃子价值从高到低（同价值时用低价值的子去吃）；
// 不吃子的着法保持生成顺序。first 非零时放在最前面（上一轮的主变着法或置换表着法）。
func orderMoves(moves []xiangqi.Move, first xiangqi.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return moveRank(moves[i]) > moveRank(moves[j])
	})
	if first.From == first.To {
		return
	}
	for i := range moves {
		if moves[i].From == first.From && moves[i].To == first.To {
			pv := moves[i]
			copy(moves[1:i+1], moves[:i])
			moves[0] = pv
			return
		}
	}
}

func moveRank(m xiangqi.Move) int {
	if !m.IsCapture() {
		return 0
	}
	victim := PieceValue(m.Captured.Type())
	if m.Captured.Type() == xiangqi.PieceGeneral {
		victim = mateScore
	}
	return victim*16 - PieceValue(m.Moved.Type())/100 + 1
}
