package xiangqi

// IsLegal 判断 from->to 对 from 上的棋子是否合法，不修改 b。
// 依次检查：棋子几何走法与阻挡、不吃己方子、走后不得将帅照面、走后己方帅不被将军。
func IsLegal(b Board, from, to Square) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	pc := b.Squares[from]
	if pc == Empty {
		return false
	}
	if !canReach(&b, from, to) {
		return false
	}
	after := b.Apply(from, to)
	if generalsFacing(&after) {
		return false
	}
	return !InCheck(after, pc.Side())
}

// canReach 只看走法几何、阻挡和“不吃己方子”，不考虑走后局面。
// 将军判定直接用它，避免 IsLegal -> InCheck -> IsLegal 的递归。
func canReach(b *Board, from, to Square) bool {
	pc := b.Squares[from]
	if pc == Empty || from == to {
		return false
	}
	dst := b.Squares[to]
	side := pc.Side()
	if dst != Empty && dst.Side() == side {
		return false
	}

	fr, fc := from.Row(), from.Col()
	tr, tc := to.Row(), to.Col()
	dr, dc := tr-fr, tc-fc

	switch pc.Type() {
	case PieceGeneral:
		return inPalace(side, tr, tc) && abs(dr)+abs(dc) == 1
	case PieceAdvisor:
		return inPalace(side, tr, tc) && abs(dr) == 1 && abs(dc) == 1
	case PieceElephant:
		if abs(dr) != 2 || abs(dc) != 2 {
			return false
		}
		if crossedRiver(side, tr) {
			return false
		}
		// 塞象眼
		return b.Squares[sq(fr+dr/2, fc+dc/2)] == Empty
	case PieceHorse:
		var legR, legC int
		switch {
		case abs(dr) == 2 && abs(dc) == 1:
			legR, legC = fr+dr/2, fc
		case abs(dr) == 1 && abs(dc) == 2:
			legR, legC = fr, fc+dc/2
		default:
			return false
		}
		// 蹩马腿
		return b.Squares[sq(legR, legC)] == Empty
	case PieceChariot:
		n, ok := countBetween(b, from, to)
		return ok && n == 0
	case PieceCannon:
		n, ok := countBetween(b, from, to)
		if !ok {
			return false
		}
		if dst == Empty {
			return n == 0
		}
		// 隔一子（炮架）吃
		return n == 1
	case PieceSoldier:
		if abs(dr)+abs(dc) != 1 {
			return false
		}
		if dr == forward(side) {
			return true
		}
		// 过河后可以横走，永远不能后退
		return dr == 0 && crossedRiver(side, fr)
	}
	return false
}

// countBetween 统计同一行/列上 from 与 to 之间（不含两端）的棋子数；不在一条线上时 ok=false。
func countBetween(b *Board, from, to Square) (n int, ok bool) {
	fr, fc := from.Row(), from.Col()
	tr, tc := to.Row(), to.Col()
	if fr != tr && fc != tc {
		return 0, false
	}
	stepR, stepC := sign(tr-fr), sign(tc-fc)
	for r, c := fr+stepR, fc+stepC; r != tr || c != tc; r, c = r+stepR, c+stepC {
		if b.Squares[sq(r, c)] != Empty {
			n++
		}
	}
	return n, true
}

// generalsFacing 两帅同列且中间无子：非法局面。
func generalsFacing(b *Board) bool {
	red := b.FindGeneral(Red)
	black := b.FindGeneral(Black)
	if red == NoSquare || black == NoSquare {
		// 有一方帅已经不在盘上，不存在照面问题
		return false
	}
	if red.Col() != black.Col() {
		return false
	}
	n, _ := countBetween(b, black, red)
	return n == 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
