// Package notation 处理局面与着法的文本表示：FEN 局面串和 ICCS 坐标着法（如 h2e2）。
package notation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"xiangqi/internal/xiangqi"
)

// InitialFEN 标准开局，红方先走。
const InitialFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w"

var ErrInvalidFEN = errors.New("invalid FEN")

var fenLetters = map[xiangqi.PieceType]rune{
	xiangqi.PieceGeneral:  'k',
	xiangqi.PieceAdvisor:  'a',
	xiangqi.PieceElephant: 'b',
	xiangqi.PieceHorse:    'n',
	xiangqi.PieceChariot:  'r',
	xiangqi.PieceCannon:   'c',
	xiangqi.PieceSoldier:  'p',
}

var fenPieces = map[rune]xiangqi.PieceType{
	'k': xiangqi.PieceGeneral,
	'a': xiangqi.PieceAdvisor,
	'b': xiangqi.PieceElephant,
	'e': xiangqi.PieceElephant,
	'n': xiangqi.PieceHorse,
	'h': xiangqi.PieceHorse,
	'r': xiangqi.PieceChariot,
	'c': xiangqi.PieceCannon,
	'p': xiangqi.PieceSoldier,
}

// EncodeFEN 10 行用“/”隔开（黑方底线在前），空位用数字压缩；空格后 w/b 表示走子方。
func EncodeFEN(b xiangqi.Board, side xiangqi.Side) string {
	var sb strings.Builder
	for r := 0; r < xiangqi.Rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < xiangqi.Cols; c++ {
			pc := b.At(xiangqi.MustSquare(r, c))
			if pc == xiangqi.Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			ch := fenLetters[pc.Type()]
			if pc.Side() == xiangqi.Red {
				ch = unicode.ToUpper(ch)
			}
			sb.WriteRune(ch)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	sb.WriteByte(' ')
	if side == xiangqi.Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	return sb.String()
}

// DecodeFEN 解析局面串。走子方缺省为红；也接受 "r" 表示红方。
// 同时接受 e/h 作为象/马的别名。
func DecodeFEN(fen string) (xiangqi.Board, xiangqi.Side, error) {
	var b xiangqi.Board
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return b, xiangqi.NoSide, ErrInvalidFEN
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != xiangqi.Rows {
		return b, xiangqi.NoSide, fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidFEN, xiangqi.Rows, len(rows))
	}
	for r, row := range rows {
		c := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '9' {
				c += int(ch - '0')
				if c > xiangqi.Cols {
					return b, xiangqi.NoSide, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, r)
				}
				continue
			}
			if c >= xiangqi.Cols {
				return b, xiangqi.NoSide, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, r)
			}
			pt, ok := fenPieces[unicode.ToLower(ch)]
			if !ok {
				return b, xiangqi.NoSide, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			side := xiangqi.Black
			if unicode.IsUpper(ch) {
				side = xiangqi.Red
			}
			b.Put(xiangqi.MustSquare(r, c), xiangqi.MakePiece(side, pt))
			c++
		}
		if c != xiangqi.Cols {
			return b, xiangqi.NoSide, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, r, c)
		}
	}

	side := xiangqi.Red
	if len(fields) > 1 {
		switch fields[1] {
		case "w", "r":
		case "b":
			side = xiangqi.Black
		default:
			return b, xiangqi.NoSide, fmt.Errorf("%w: side %q", ErrInvalidFEN, fields[1])
		}
	}
	return b, side, nil
}
