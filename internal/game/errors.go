package game

import "errors"

var (
	ErrGameOver            = errors.New("game is over")
	ErrIllegalMove         = errors.New("illegal move")
	ErrInsufficientHistory = errors.New("not enough moves to undo")
	ErrInvalidUndoCount    = errors.New("undo count must be positive")
)
