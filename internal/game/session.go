// Package game 维护一局棋的状态：棋盘、走子方、着法历史和终局标志。
// Session 本身不加锁，同一局的并发访问由上层按 id 串行化。
package game

import (
	"fmt"
	"time"

	"xiangqi/internal/xiangqi"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCheckmate  Status = "checkmate"
	StatusStalemate  Status = "stalemate"
	StatusDrawn      Status = "drawn"
)

type Session struct {
	ID         string
	PlayerSide xiangqi.Side

	Board      xiangqi.Board
	SideToMove xiangqi.Side
	Moves      []xiangqi.Move
	// Boards[0] 是开局局面，之后每一步追加一个快照，len(Boards) == len(Moves)+1
	Boards []xiangqi.Board

	InCheck           bool
	Status            Status
	Winner            xiangqi.Side
	DrawReason        xiangqi.DrawReason
	MovesSinceCapture int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New 标准开局，红方先走。player 是人类执的一方，另一方由引擎走。
func New(id string, player xiangqi.Side) *Session {
	return NewFromPosition(id, player, xiangqi.NewInitialBoard(), xiangqi.Red)
}

// NewFromPosition 从任意局面开始（例如 FEN 摆局），历史只有这一个局面。
func NewFromPosition(id string, player xiangqi.Side, b xiangqi.Board, toMove xiangqi.Side) *Session {
	if player != xiangqi.Black {
		player = xiangqi.Red
	}
	if toMove != xiangqi.Black {
		toMove = xiangqi.Red
	}
	now := time.Now()
	s := &Session{
		ID:         id,
		PlayerSide: player,
		Board:      b,
		SideToMove: toMove,
		Boards:     []xiangqi.Board{b},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.refresh()
	return s
}

// EngineSide 引擎执的一方。
func (s *Session) EngineSide() xiangqi.Side { return s.PlayerSide.Opponent() }

func (s *Session) IsOver() bool { return s.Status != StatusInProgress }

func (s *Session) IsCheckmate() bool { return s.Status == StatusCheckmate }

func (s *Session) IsStalemate() bool { return s.Status == StatusStalemate }

// LastMove 最近一步；没有历史时 ok=false。
func (s *Session) LastMove() (xiangqi.Move, bool) {
	if len(s.Moves) == 0 {
		return xiangqi.Move{}, false
	}
	return s.Moves[len(s.Moves)-1], true
}

// Apply 走一步。终局后、走对方的子、或走法不合法时返回错误且不改变任何状态。
func (s *Session) Apply(from, to xiangqi.Square) (xiangqi.Move, error) {
	if s.IsOver() {
		return xiangqi.Move{}, ErrGameOver
	}
	if !from.Valid() || !to.Valid() {
		return xiangqi.Move{}, fmt.Errorf("%w: %w", ErrIllegalMove, xiangqi.ErrInvalidSquare)
	}
	pc := s.Board.At(from)
	if pc == xiangqi.Empty {
		return xiangqi.Move{}, fmt.Errorf("%w: no piece at %v", ErrIllegalMove, from)
	}
	if pc.Side() != s.SideToMove {
		return xiangqi.Move{}, fmt.Errorf("%w: %v belongs to %v, %v to move", ErrIllegalMove, from, pc.Side(), s.SideToMove)
	}
	if !xiangqi.IsLegal(s.Board, from, to) {
		return xiangqi.Move{}, fmt.Errorf("%w: %v -> %v", ErrIllegalMove, from, to)
	}

	next := s.Board.Apply(from, to)
	mv := xiangqi.Move{
		From:      from,
		To:        to,
		Moved:     pc,
		Captured:  s.Board.At(to),
		GaveCheck: xiangqi.InCheck(next, s.SideToMove.Opponent()),
	}

	s.Board = next
	s.Moves = append(s.Moves, mv)
	s.Boards = append(s.Boards, next)
	s.SideToMove = s.SideToMove.Opponent()
	if mv.IsCapture() {
		s.MovesSinceCapture = 0
	} else {
		s.MovesSinceCapture++
	}
	s.refresh()
	s.UpdatedAt = time.Now()
	return mv, nil
}

// Undo 悔 n 步（半回合），随后按恢复出的局面重新计算终局标志。
func (s *Session) Undo(n int) error {
	if n <= 0 {
		return ErrInvalidUndoCount
	}
	if n > len(s.Moves) {
		return fmt.Errorf("%w: requested %d, have %d", ErrInsufficientHistory, n, len(s.Moves))
	}
	for i := 0; i < n; i++ {
		mv := s.Moves[len(s.Moves)-1]
		s.Board.Put(mv.From, mv.Moved)
		s.Board.Put(mv.To, mv.Captured)
		s.Moves = s.Moves[:len(s.Moves)-1]
		s.Boards = s.Boards[:len(s.Boards)-1]
		s.SideToMove = s.SideToMove.Opponent()
	}
	s.MovesSinceCapture = movesSinceCapture(s.Moves)
	s.refresh()
	s.UpdatedAt = time.Now()
	return nil
}

func movesSinceCapture(moves []xiangqi.Move) int {
	n := 0
	for i := len(moves) - 1; i >= 0; i-- {
		if moves[i].IsCapture() {
			break
		}
		n++
	}
	return n
}

// refresh 按 将死 > 困毙 > 其它和棋 的顺序重算当前走子方视角的状态。
func (s *Session) refresh() {
	side := s.SideToMove
	s.InCheck = xiangqi.InCheck(s.Board, side)
	s.Status = StatusInProgress
	s.Winner = xiangqi.NoSide
	s.DrawReason = xiangqi.DrawNone

	if !xiangqi.HasLegalMove(s.Board, side) {
		if s.InCheck {
			s.Status = StatusCheckmate
			s.Winner = side.Opponent()
		} else {
			s.Status = StatusStalemate
			s.DrawReason = xiangqi.DrawStalemate
		}
		return
	}
	if reason, ok := xiangqi.IsDraw(s.Board, s.Boards, s.Moves, side, s.MovesSinceCapture); ok {
		s.Status = StatusDrawn
		s.DrawReason = reason
	}
}

// Clone 深拷贝，用于把状态交给其它 goroutine（序列化、推送）。
func (s *Session) Clone() *Session {
	c := *s
	c.Moves = append([]xiangqi.Move(nil), s.Moves...)
	c.Boards = append([]xiangqi.Board(nil), s.Boards...)
	return &c
}
