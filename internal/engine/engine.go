// Package engine 为走子方选择着法：迭代加深的 alpha-beta negamax，带置换表和吃子排序。
// 每次 Search 都用自己的置换表和计数器，不读写任何对局状态，可以在多个 goroutine 里同时调用。
package engine

import "errors"

const DefaultTTSize = 1 << 20

var ErrNoLegalMoves = errors.New("no legal moves")

type Engine struct {
	ttSize int
}

// NewEngine ttSize 是单次搜索置换表的条目上限，<=0 用默认值。
func NewEngine(ttSize int) *Engine {
	if ttSize <= 0 {
		ttSize = DefaultTTSize
	}
	return &Engine{ttSize: ttSize}
}

func (e *Engine) TTSize() int { return e.ttSize }
