package engine

import "xiangqi/internal/xiangqi"

type bound uint8

const (
	boundExact bound = iota
	boundLower       // fail-high：真实分数 >= Score
	boundUpper       // fail-low：真实分数 <= Score
)

type ttEntry struct {
	Depth int
	Score int
	Bound bound
	Move  xiangqi.Move
}

type transpositionTable struct {
	m   map[uint64]ttEntry
	cap int
}

func newTT(capacity int) *transpositionTable {
	initial := capacity
	if initial > 1<<16 {
		initial = 1 << 16
	}
	return &transpositionTable{m: make(map[uint64]ttEntry, initial), cap: capacity}
}

func (t *transpositionTable) probe(key uint64) (ttEntry, bool) {
	e, ok := t.m[key]
	return e, ok
}

// store 深度更深（或相同）才覆盖；表满了整张清空重来。
func (t *transpositionTable) store(key uint64, depth, score int, b bound, mv xiangqi.Move) {
	old, ok := t.m[key]
	if ok && depth < old.Depth {
		return
	}
	if !ok && len(t.m) >= t.cap {
		t.m = make(map[uint64]ttEntry, len(t.m)/4)
	}
	t.m[key] = ttEntry{Depth: depth, Score: score, Bound: b, Move: mv}
}

func (t *transpositionTable) len() int { return len(t.m) }

// 杀棋分在表里按“距当前节点的步数”存，取出时再换回“距根”的步数。
func scoreToTT(score, ply int) int {
	switch {
	case score > mateThreshold:
		return score + ply
	case score < -mateThreshold:
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score > mateThreshold:
		return score - ply
	case score < -mateThreshold:
		return score + ply
	}
	return score
}
