package notation

import (
	"errors"
	"fmt"
	"strings"

	"xiangqi/internal/xiangqi"
)

var ErrInvalidMove = errors.New("invalid move notation")

// SquareName 返回 ICCS 坐标：列 a-i（从红方左手起），行 0-9（红方底线为 0）。
func SquareName(s xiangqi.Square) string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.Col()), byte('0' + (xiangqi.Rows - 1 - s.Row()))})
}

func ParseSquare(name string) (xiangqi.Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 {
		return xiangqi.NoSquare, fmt.Errorf("%w: %q", ErrInvalidMove, name)
	}
	file, rank := name[0], name[1]
	if file < 'a' || file > 'i' || rank < '0' || rank > '9' {
		return xiangqi.NoSquare, fmt.Errorf("%w: %q", ErrInvalidMove, name)
	}
	return xiangqi.NewSquare(xiangqi.Rows-1-int(rank-'0'), int(file-'a'))
}

// FormatMove 如 "h2e2"。
func FormatMove(from, to xiangqi.Square) string {
	return SquareName(from) + SquareName(to)
}

// ParseMove 接受 "h2e2" 或 "h2-e2"。
func ParseMove(s string) (from, to xiangqi.Square, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(s) != 4 {
		return xiangqi.NoSquare, xiangqi.NoSquare, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	if from, err = ParseSquare(s[:2]); err != nil {
		return xiangqi.NoSquare, xiangqi.NoSquare, err
	}
	if to, err = ParseSquare(s[2:]); err != nil {
		return xiangqi.NoSquare, xiangqi.NoSquare, err
	}
	return from, to, nil
}
