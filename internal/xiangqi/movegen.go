package xiangqi

var (
	orthoDirs  = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagDirs   = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	horseJumps = [8][2]int{
		{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
		{1, -2}, {1, 2}, {2, -1}, {2, 1},
	}
)

// candidates 列出 from 上棋子几何上可能到达的格子，真正的合法性交给 IsLegal。
func candidates(b *Board, from Square, out []Square) []Square {
	pc := b.Squares[from]
	row, col := from.Row(), from.Col()
	add := func(r, c int) {
		if onBoard(r, c) {
			out = append(out, sq(r, c))
		}
	}
	switch pc.Type() {
	case PieceGeneral:
		for _, d := range orthoDirs {
			add(row+d[0], col+d[1])
		}
	case PieceAdvisor:
		for _, d := range diagDirs {
			add(row+d[0], col+d[1])
		}
	case PieceElephant:
		for _, d := range diagDirs {
			add(row+2*d[0], col+2*d[1])
		}
	case PieceHorse:
		for _, d := range horseJumps {
			add(row+d[0], col+d[1])
		}
	case PieceChariot, PieceCannon:
		for r := 0; r < Rows; r++ {
			if r != row {
				out = append(out, sq(r, col))
			}
		}
		for c := 0; c < Cols; c++ {
			if c != col {
				out = append(out, sq(row, c))
			}
		}
	case PieceSoldier:
		add(row+forward(pc.Side()), col)
		add(row, col-1)
		add(row, col+1)
	}
	return out
}

// LegalMovesFrom 生成 from 上棋子的全部合法着法。
func LegalMovesFrom(b Board, from Square) []Move {
	if !from.Valid() || b.Squares[from] == Empty {
		return nil
	}
	var buf [Rows + Cols]Square
	var moves []Move
	for _, to := range candidates(&b, from, buf[:0]) {
		if IsLegal(b, from, to) {
			moves = append(moves, Move{From: from, To: to, Moved: b.Squares[from], Captured: b.Squares[to]})
		}
	}
	return moves
}

// LegalMoves 生成 side 的全部合法着法（按格子顺序）。
func LegalMoves(b Board, side Side) []Move {
	moves := make([]Move, 0, 48)
	var buf [Rows + Cols]Square
	for s, pc := range b.Squares {
		if pc == Empty || pc.Side() != side {
			continue
		}
		from := Square(s)
		for _, to := range candidates(&b, from, buf[:0]) {
			if IsLegal(b, from, to) {
				moves = append(moves, Move{From: from, To: to, Moved: pc, Captured: b.Squares[to]})
			}
		}
	}
	return moves
}

// HasLegalMove 找到第一步合法着法即返回。
func HasLegalMove(b Board, side Side) bool {
	var buf [Rows + Cols]Square
	for s, pc := range b.Squares {
		if pc == Empty || pc.Side() != side {
			continue
		}
		from := Square(s)
		for _, to := range candidates(&b, from, buf[:0]) {
			if IsLegal(b, from, to) {
				return true
			}
		}
	}
	return false
}

// Perft 统计 depth 层合法着法树的叶子数，用来校验走法生成。
func Perft(b Board, side Side, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := LegalMoves(b, side)
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		n += Perft(b.Apply(m.From, m.To), side.Opponent(), depth-1)
	}
	return n
}
