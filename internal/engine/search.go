package engine

import (
	"context"
	"time"

	"xiangqi/internal/xiangqi"
)

const (
	// 一个足够大的值，当成正负无穷
	scoreInf      = 1_000_000_000
	mateScore     = 1_000_000
	mateThreshold = mateScore - 1000

	DefaultMaxDepth = 3

	// 每搜这么多节点检查一次时间/取消
	pollInterval = 1024
)

// 搜索配置
type SearchConfig struct {
	MaxDepth  int           // 最大搜索深度（ply），<=0 用 DefaultMaxDepth
	TimeLimit time.Duration // 搜索时间上限（0 表示只受 ctx 限制）

	// CheckMateDepth >0 时先做一次连将杀搜索（半回合数），找到就直接走
	CheckMateDepth int

	// OnDepth 每完成一层迭代回调一次，可用于记录日志
	OnDepth func(SearchResult)
}

// 搜索结果
type SearchResult struct {
	BestMove xiangqi.Move   // 最佳着法
	Score    int            // 走子方视角的评估分
	Depth    int            // 完整搜完的深度
	Nodes    int64          // 节点数
	TimeUsed time.Duration  // 花费时间
	PV       []xiangqi.Move // 主变，从置换表里还原
}

// IsMateScore 分数是否表示在有限步内将死（任意一方）。
func IsMateScore(score int) bool {
	return score > mateThreshold || score < -mateThreshold
}

type searcher struct {
	ctx      context.Context
	deadline time.Time
	tt       *transpositionTable
	nodes    int64

	abortable bool
	aborted   bool
}

// Search 迭代加深。第 1 层总是完整搜完；更深的某一层如果被时间或 ctx 打断，
// 丢弃这一层，返回上一层完整结果。
func (e *Engine) Search(ctx context.Context, b xiangqi.Board, side xiangqi.Side, cfg SearchConfig) (SearchResult, error) {
	start := time.Now()
	rootMoves := xiangqi.LegalMoves(b, side)
	if len(rootMoves) == 0 {
		return SearchResult{}, ErrNoLegalMoves
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	if cfg.CheckMateDepth > 0 {
		if v := VCFSearch(b, side, cfg.CheckMateDepth); v.CanWin {
			res := SearchResult{
				BestMove: v.Move,
				Score:    mateScore - v.Plies,
				Depth:    v.Plies,
				Nodes:    int64(v.Nodes),
				TimeUsed: time.Since(start),
				PV:       []xiangqi.Move{v.Move},
			}
			if cfg.OnDepth != nil {
				cfg.OnDepth(res)
			}
			return res, nil
		}
	}

	s := &searcher{ctx: ctx, tt: newTT(e.ttSize)}
	if cfg.TimeLimit > 0 {
		s.deadline = start.Add(cfg.TimeLimit)
	}
	if d, ok := ctx.Deadline(); ok && (s.deadline.IsZero() || d.Before(s.deadline)) {
		s.deadline = d
	}

	rootKey := xiangqi.PositionKey(b, side)
	var res SearchResult
	for depth := 1; depth <= cfg.MaxDepth; depth++ {
		if depth > 1 && s.expired() {
			break
		}
		s.abortable = depth > 1
		score, best := s.root(b, side, rootKey, rootMoves, depth, res.BestMove)
		if s.aborted {
			break
		}
		res = SearchResult{
			BestMove: best,
			Score:    score,
			Depth:    depth,
			Nodes:    s.nodes,
			TimeUsed: time.Since(start),
			PV:       s.principalVariation(b, rootKey, depth),
		}
		if cfg.OnDepth != nil {
			cfg.OnDepth(res)
		}
		// 已经找到杀棋，再深也不会更好
		if score > mateThreshold {
			break
		}
	}
	res.Nodes = s.nodes
	res.TimeUsed = time.Since(start)
	return res, nil
}

func (s *searcher) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// poll 只在可中断的层里生效；第 1 层必须搜完，保证总有一个完整结果。
func (s *searcher) poll() bool {
	if s.aborted {
		return true
	}
	if s.abortable && s.nodes%pollInterval == 0 && s.expired() {
		s.aborted = true
	}
	return s.aborted
}

func (s *searcher) root(b xiangqi.Board, side xiangqi.Side, key uint64, moves []xiangqi.Move, depth int, pv xiangqi.Move) (int, xiangqi.Move) {
	ordered := make([]xiangqi.Move, len(moves))
	copy(ordered, moves)
	if pv.From == pv.To {
		if e, ok := s.tt.probe(key); ok {
			pv = e.Move
		}
	}
	orderMoves(ordered, pv)

	alpha, beta := -scoreInf, scoreInf
	best := ordered[0]
	bestScore := -scoreInf
	for _, mv := range ordered {
		s.nodes++
		child := b.Apply(mv.From, mv.To)
		childKey := xiangqi.MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
		score := -s.negamax(child, side.Opponent(), childKey, depth-1, -beta, -alpha, 1)
		if s.aborted {
			return 0, xiangqi.Move{}
		}
		if score > bestScore {
			bestScore = score
			best = mv
		}
		if score > alpha {
			alpha = score
		}
	}
	s.tt.store(key, depth, bestScore, boundExact, best)
	return bestScore, best
}

func (s *searcher) negamax(b xiangqi.Board, side xiangqi.Side, key uint64, depth, alpha, beta, ply int) int {
	s.nodes++
	if s.poll() {
		return 0
	}

	origAlpha := alpha
	var ttMove xiangqi.Move
	if e, ok := s.tt.probe(key); ok {
		ttMove = e.Move
		if e.Depth >= depth {
			score := scoreFromTT(e.Score, ply)
			switch e.Bound {
			case boundExact:
				return score
			case boundLower:
				if score > alpha {
					alpha = score
				}
			case boundUpper:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		// 叶子只需要知道有没有着法，找到一步即停
		if !xiangqi.HasLegalMove(b, side) {
			return terminalScore(b, side, ply)
		}
		return Evaluate(b, side)
	}
	moves := xiangqi.LegalMoves(b, side)
	if len(moves) == 0 {
		return terminalScore(b, side, ply)
	}

	orderMoves(moves, ttMove)

	bestScore := -scoreInf
	var best xiangqi.Move
	for _, mv := range moves {
		child := b.Apply(mv.From, mv.To)
		childKey := xiangqi.MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
		score := -s.negamax(child, side.Opponent(), childKey, depth-1, -beta, -alpha, ply+1)
		if s.aborted {
			return 0
		}
		if score > bestScore {
			bestScore = score
			best = mv
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	bnd := boundExact
	switch {
	case bestScore <= origAlpha:
		bnd = boundUpper
	case bestScore >= beta:
		bnd = boundLower
	}
	s.tt.store(key, depth, scoreToTT(bestScore, ply), bnd, best)
	return bestScore
}

// 无子可动：被将死按距根步数计分（越早被将死越差），困毙算和。
func terminalScore(b xiangqi.Board, side xiangqi.Side, ply int) int {
	if xiangqi.InCheck(b, side) {
		return -mateScore + ply
	}
	return 0
}

// principalVariation 沿置换表里的最佳着法往下走，遇到不合法或缺失就停。
func (s *searcher) principalVariation(b xiangqi.Board, key uint64, depth int) []xiangqi.Move {
	pv := make([]xiangqi.Move, 0, depth)
	seen := make(map[uint64]bool, depth)
	for len(pv) < depth {
		e, ok := s.tt.probe(key)
		if !ok || e.Move.From == e.Move.To || seen[key] {
			break
		}
		seen[key] = true
		mv := e.Move
		if b.At(mv.From) != mv.Moved || !xiangqi.IsLegal(b, mv.From, mv.To) {
			break
		}
		mv.Captured = b.At(mv.To)
		pv = append(pv, mv)
		b = b.Apply(mv.From, mv.To)
		key = xiangqi.MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
	}
	return pv
}
