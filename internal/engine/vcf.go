package engine

import (
	"sort"

	"xiangqi/internal/xiangqi"
)

// 连将杀（VCF）：攻方每一步都必须将军，守方可以任意应将。
// 只在 SearchConfig.CheckMateDepth > 0 时于迭代加深之前跑一次。
const (
	vcfDepthCap         = 15
	vcfNodeBudgetBase   = 20000
	vcfNodeBudgetPerPly = 5000
)

const (
	vcfModeAttack uint64 = 0xA5A5A5A5A5A5A5A5
	vcfModeDefend uint64 = 0x5A5A5A5A5A5A5A5A
)

type vcfEntry struct {
	Depth  int
	Result bool
	Move   xiangqi.Move
}

type vcfContext struct {
	tt         map[uint64]vcfEntry
	inPath     map[uint64]bool
	nodes      int
	nodeBudget int
}

// VCFResult 连将搜索结果；Plies 是攻方找到的杀棋长度（半回合）。
type VCFResult struct {
	CanWin bool
	Move   xiangqi.Move
	Plies  int
	Nodes  int
}

// VCFSearch 在 maxPlies 个半回合内寻找连将杀。超出节点预算时按“找不到”处理。
func VCFSearch(b xiangqi.Board, side xiangqi.Side, maxPlies int) VCFResult {
	if maxPlies <= 0 {
		return VCFResult{}
	}
	if maxPlies > vcfDepthCap {
		maxPlies = vcfDepthCap
	}
	ctx := &vcfContext{
		tt:         make(map[uint64]vcfEntry, 1<<12),
		inPath:     make(map[uint64]bool, 64),
		nodeBudget: vcfNodeBudgetBase + maxPlies*vcfNodeBudgetPerPly,
	}
	key := xiangqi.PositionKey(b, side)

	// 1, 3, 5 ... 层逐步加深，先找最短的杀
	for d := 1; d <= maxPlies; d += 2 {
		if mv, ok := vcfAttack(ctx, b, side, key, d, true); ok {
			return VCFResult{CanWin: true, Move: mv, Plies: d, Nodes: ctx.nodes}
		}
		if ctx.nodes > ctx.nodeBudget {
			break
		}
	}
	return VCFResult{Nodes: ctx.nodes}
}

// checkingMoves 只保留将军的着法，车 > 炮 > 马 > 兵，吃子优先。
func checkingMoves(b xiangqi.Board, side xiangqi.Side) []xiangqi.Move {
	all := xiangqi.LegalMoves(b, side)
	out := all[:0]
	for _, mv := range all {
		if xiangqi.InCheck(b.Apply(mv.From, mv.To), side.Opponent()) {
			mv.GaveCheck = true
			out = append(out, mv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return vcfMoveScore(out[i]) > vcfMoveScore(out[j])
	})
	return out
}

func vcfMoveScore(m xiangqi.Move) int {
	s := 0
	if m.IsCapture() {
		s += 100 + int(m.Captured.Type())
	}
	switch m.Moved.Type() {
	case xiangqi.PieceChariot:
		s += 80
	case xiangqi.PieceCannon:
		s += 60
	case xiangqi.PieceHorse:
		s += 40
	case xiangqi.PieceSoldier:
		s += 20
	}
	return s
}

func vcfAttack(ctx *vcfContext, b xiangqi.Board, side xiangqi.Side, key uint64, depth int, root bool) (xiangqi.Move, bool) {
	if depth <= 0 || ctx.reachNodeBudget() {
		return xiangqi.Move{}, false
	}
	k := key ^ vcfModeAttack
	if ctx.inPath[k] {
		return xiangqi.Move{}, false
	}
	if e, ok := ctx.tt[k]; ok && e.Depth >= depth && !root {
		return e.Move, e.Result
	}
	ctx.inPath[k] = true
	defer delete(ctx.inPath, k)

	moves := checkingMoves(b, side)
	if e, ok := ctx.tt[k]; ok && e.Result {
		for i := range moves {
			if moves[i].From == e.Move.From && moves[i].To == e.Move.To {
				moves[0], moves[i] = moves[i], moves[0]
				break
			}
		}
	}

	var best xiangqi.Move
	result := false
	for _, mv := range moves {
		next := b.Apply(mv.From, mv.To)
		nextKey := xiangqi.MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
		if !vcfDefenderEscapes(ctx, next, side.Opponent(), nextKey, depth-1) {
			best, result = mv, true
			break
		}
	}
	ctx.tt[k] = vcfEntry{Depth: depth, Result: result, Move: best}
	return best, result
}

// vcfDefenderEscapes 守方只要有一步应将后攻方再也将不死，就算逃脱。
func vcfDefenderEscapes(ctx *vcfContext, b xiangqi.Board, side xiangqi.Side, key uint64, depth int) bool {
	moves := xiangqi.LegalMoves(b, side)
	if len(moves) == 0 {
		// 攻方刚将了军，无子可应就是被将死
		return false
	}
	if depth <= 0 || ctx.reachNodeBudget() {
		return true
	}
	k := key ^ vcfModeDefend
	if ctx.inPath[k] {
		return true
	}
	if e, ok := ctx.tt[k]; ok && e.Depth >= depth {
		return e.Result
	}
	ctx.inPath[k] = true
	defer delete(ctx.inPath, k)

	result := false
	for _, mv := range moves {
		next := b.Apply(mv.From, mv.To)
		nextKey := xiangqi.MoveKey(key, mv.From, mv.To, mv.Moved, mv.Captured)
		if _, ok := vcfAttack(ctx, next, side.Opponent(), nextKey, depth-1, false); !ok {
			result = true
			break
		}
	}
	ctx.tt[k] = vcfEntry{Depth: depth, Result: result}
	return result
}

func (ctx *vcfContext) reachNodeBudget() bool {
	ctx.nodes++
	return ctx.nodes > ctx.nodeBudget
}
