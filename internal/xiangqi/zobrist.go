package xiangqi

import "sync"

var (
	zobristOnce sync.Once

	zobristPieces [2][numPieceTypes][NumSquares]uint64
	zobristSide   uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		// splitmix64，固定种子保证同一局面在不同进程里哈希一致
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}
		for side := 0; side < 2; side++ {
			for pt := 1; pt < numPieceTypes; pt++ {
				for s := 0; s < NumSquares; s++ {
					zobristPieces[side][pt][s] = next()
				}
			}
		}
		zobristSide = next()
	})
}

func pieceKey(pc Piece, s Square) uint64 {
	if pc == Empty || !s.Valid() {
		return 0
	}
	sideIdx := 0
	if pc.Side() == Black {
		sideIdx = 1
	}
	return zobristPieces[sideIdx][pc.Type()][s]
}

// Hash 只由棋子位置决定，用于重复局面判定。
func (b *Board) Hash() uint64 {
	initZobrist()
	var h uint64
	for s, pc := range b.Squares {
		if pc != Empty {
			h ^= pieceKey(pc, Square(s))
		}
	}
	return h
}

// PositionKey 额外混入走子方，作为置换表的键。
func PositionKey(b Board, side Side) uint64 {
	h := b.Hash()
	if side == Black {
		h ^= zobristSide
	}
	return h
}

// MoveKey 在已知 key 的基础上增量更新：移走 from 的子、吃掉 to 的子、落子、换边。
func MoveKey(key uint64, from, to Square, moved, captured Piece) uint64 {
	initZobrist()
	key ^= pieceKey(moved, from)
	if captured != Empty {
		key ^= pieceKey(captured, to)
	}
	key ^= pieceKey(moved, to)
	return key ^ zobristSide
}
