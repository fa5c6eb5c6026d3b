package xiangqi

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Rows       = 10
	Cols       = 9
	NumSquares = Rows * Cols

	// 河界在第 4 行与第 5 行之间：黑方 0..4，红方 5..9
	riverTop    = 4
	riverBottom = 5
)

var ErrInvalidSquare = errors.New("invalid square")

// Square 是棋盘格子的下标：row*Cols + col。黑方底线为第 0 行，红方底线为第 9 行。
type Square int8

// NoSquare 表示“没有格子”，例如某方的帅已不在盘上。
const NoSquare Square = -1

func NewSquare(row, col int) (Square, error) {
	if !onBoard(row, col) {
		return NoSquare, fmt.Errorf("%w: (%d,%d)", ErrInvalidSquare, row, col)
	}
	return Square(row*Cols + col), nil
}

// MustSquare 用于常量坐标（测试、开局摆子）；越界直接 panic。
func MustSquare(row, col int) Square {
	sq, err := NewSquare(row, col)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) Row() int    { return int(s) / Cols }
func (s Square) Col() int    { return int(s) % Cols }
func (s Square) Valid() bool { return s >= 0 && int(s) < NumSquares }

func (s Square) String() string {
	if !s.Valid() {
		return "(-,-)"
	}
	return fmt.Sprintf("(%d,%d)", s.Row(), s.Col())
}

func sq(row, col int) Square { return Square(row*Cols + col) }

func onBoard(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// 是否在九宫
func inPalace(side Side, row, col int) bool {
	if col < 3 || col > 5 {
		return false
	}
	switch side {
	case Black:
		return row >= 0 && row <= 2
	case Red:
		return row >= 7 && row <= 9
	}
	return false
}

// 该行是否已在对方半场
func crossedRiver(side Side, row int) bool {
	switch side {
	case Red:
		return row <= riverTop
	case Black:
		return row >= riverBottom
	}
	return false
}

// 兵的前进方向：红向上(-1)，黑向下(+1)
func forward(side Side) int {
	if side == Red {
		return -1
	}
	if side == Black {
		return +1
	}
	return 0
}

// Board 10×9 棋盘。数组值类型：赋值即复制，不会在对局之间共享。
type Board struct {
	Squares [NumSquares]Piece
}

func (b *Board) At(s Square) Piece { return b.Squares[s] }

// Put 放置（或用 Empty 清空）一个格子，用于摆局面。
func (b *Board) Put(s Square, p Piece) { b.Squares[s] = p }

// Apply 返回走子后的新棋盘，不做任何合法性检查。
func (b Board) Apply(from, to Square) Board {
	b.Squares[to] = b.Squares[from]
	b.Squares[from] = Empty
	return b
}

// FindGeneral 返回 side 的帅/将所在格；不存在时返回 NoSquare。
func (b *Board) FindGeneral(side Side) Square {
	want := MakePiece(side, PieceGeneral)
	for s, pc := range b.Squares {
		if pc == want {
			return Square(s)
		}
	}
	return NoSquare
}

// Count 统计 side 的某类棋子数量。
func (b *Board) Count(side Side, pt PieceType) int {
	want := MakePiece(side, pt)
	n := 0
	for _, pc := range b.Squares {
		if pc == want {
			n++
		}
	}
	return n
}

var initialRows = [Rows]string{
	"rheakaehr",
	".........",
	".c.....c.",
	"s.s.s.s.s",
	".........",
	".........",
	"S.S.S.S.S",
	".C.....C.",
	".........",
	"RHEAKAEHR",
}

var letterToPieceType = map[byte]PieceType{
	'k': PieceGeneral,
	'a': PieceAdvisor,
	'e': PieceElephant,
	'h': PieceHorse,
	'r': PieceChariot,
	'c': PieceCannon,
	's': PieceSoldier,
}

// NewInitialBoard 标准开局：32 子，黑上红下。
func NewInitialBoard() Board {
	var b Board
	for r, line := range initialRows {
		for c := 0; c < Cols; c++ {
			ch := line[c]
			if ch == '.' {
				continue
			}
			side := Red
			if ch >= 'a' && ch <= 'z' {
				side = Black
			} else {
				ch += 'a' - 'A'
			}
			b.Squares[sq(r, c)] = MakePiece(side, letterToPieceType[ch])
		}
	}
	return b
}

// String 调试用的文本盘面，大写红方、小写黑方。
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			sb.WriteByte(pieceLetter(b.Squares[sq(r, c)]))
		}
		if r < Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func pieceLetter(p Piece) byte {
	if p == Empty {
		return '.'
	}
	var ch byte
	for k, v := range letterToPieceType {
		if v == p.Type() {
			ch = k
			break
		}
	}
	if p.Side() == Red {
		return ch - ('a' - 'A')
	}
	return ch
}
