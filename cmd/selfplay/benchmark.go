package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"xiangqi/internal/engine"
	"xiangqi/internal/game"
	"xiangqi/internal/notation"
	"xiangqi/internal/xiangqi"
)

type PlayerConfig struct {
	Name string
	Cfg  engine.SearchConfig
}

type gameResult struct {
	Winner string // "Red" / "Black" / ""
	Reason string
	Plies  int
	Final  xiangqi.Board
	Last   xiangqi.Move
}

func playGame(ctx context.Context, e *engine.Engine, red, black PlayerConfig, maxPlies int, log zerolog.Logger) (gameResult, error) {
	s := game.New(fmt.Sprintf("selfplay-%d", time.Now().UnixNano()), xiangqi.Red)

	for len(s.Moves) < maxPlies && !s.IsOver() {
		cfg := red.Cfg
		if s.SideToMove == xiangqi.Black {
			cfg = black.Cfg
		}

		start := time.Now()
		res, err := e.Search(ctx, s.Board, s.SideToMove, cfg)
		if err != nil {
			if errors.Is(err, engine.ErrNoLegalMoves) {
				break
			}
			return gameResult{}, err
		}
		if _, err := s.Apply(res.BestMove.From, res.BestMove.To); err != nil {
			return gameResult{}, fmt.Errorf("engine produced %s: %w",
				notation.FormatMove(res.BestMove.From, res.BestMove.To), err)
		}

		d := time.Since(start)
		log.Debug().
			Int("ply", len(s.Moves)).
			Str("move", notation.FormatMove(res.BestMove.From, res.BestMove.To)).
			Int("score", res.Score).
			Int("depth", res.Depth).
			Int64("nodes", res.Nodes).
			Int64("nps", int64(float64(res.Nodes)/max(d.Seconds(), 1e-9))).
			Msg("move")

		if err := ctx.Err(); err != nil {
			return gameResult{}, err
		}
	}

	r := gameResult{Plies: len(s.Moves), Final: s.Board}
	r.Last, _ = s.LastMove()
	switch s.Status {
	case game.StatusCheckmate:
		r.Winner = "Red"
		if s.Winner == xiangqi.Black {
			r.Winner = "Black"
		}
		r.Reason = "checkmate"
	case game.StatusStalemate:
		r.Reason = "stalemate"
	case game.StatusDrawn:
		r.Reason = string(s.DrawReason)
	default:
		r.Reason = "ply limit"
	}
	return r, nil
}

var glyphs = map[xiangqi.PieceType][2]string{
	xiangqi.PieceGeneral:  {"帅", "将"},
	xiangqi.PieceAdvisor:  {"仕", "士"},
	xiangqi.PieceElephant: {"相", "象"},
	xiangqi.PieceHorse:    {"马", "马"},
	xiangqi.PieceChariot:  {"车", "车"},
	xiangqi.PieceCannon:   {"炮", "炮"},
	xiangqi.PieceSoldier:  {"兵", "卒"},
}

// renderBoard 红方红色，黑方加粗，最后一步的起止格反色；终端不支持颜色时 termenv 自动退化为纯文本。
func renderBoard(out *termenv.Output, b xiangqi.Board, last xiangqi.Move) string {
	var sb strings.Builder
	for r := 0; r < xiangqi.Rows; r++ {
		fmt.Fprintf(&sb, "%d ", xiangqi.Rows-1-r)
		for c := 0; c < xiangqi.Cols; c++ {
			s := xiangqi.MustSquare(r, c)
			p := b.At(s)
			var cell termenv.Style
			switch {
			case p.IsEmpty():
				cell = out.String("十").Faint()
			case p.Side() == xiangqi.Red:
				cell = out.String(glyphs[p.Type()][0]).Foreground(out.Color("1"))
			default:
				cell = out.String(glyphs[p.Type()][1]).Bold()
			}
			if last.Moved != xiangqi.Empty && (s == last.From || s == last.To) {
				cell = cell.Reverse()
			}
			sb.WriteString(cell.String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
		if r == 4 {
			sb.WriteString("  ~~~~~~ 楚河  汉界 ~~~~~~\n")
		}
	}
	sb.WriteString("  a  b  c  d  e  f  g  h  i")
	return sb.String()
}
