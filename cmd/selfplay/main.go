package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"xiangqi/internal/engine"
	"xiangqi/internal/logging"
)

func main() {
	totalGames := flag.Int("games", 4, "number of games to play")
	redDepth := flag.Int("red-depth", 3, "search depth for the first player")
	blackDepth := flag.Int("black-depth", 2, "search depth for the second player")
	moveTime := flag.Duration("movetime", 2*time.Second, "time budget per move")
	maxPlies := flag.Int("maxplies", 300, "stop a game after this many plies")
	parallel := flag.Int("parallel", runtime.NumCPU(), "games played concurrently")
	showBoard := flag.Bool("board", false, "print the final board of every game")
	logLevel := flag.String("log-level", "info", "debug prints every move")
	flag.Parse()

	log := logging.New(logging.Options{Level: *logLevel, Format: "console"})
	out := termenv.NewOutput(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := PlayerConfig{
		Name: fmt.Sprintf("Alpha-Beta (Depth %d)", *redDepth),
		Cfg:  engine.SearchConfig{MaxDepth: *redDepth, TimeLimit: *moveTime},
	}
	b := PlayerConfig{
		Name: fmt.Sprintf("Alpha-Beta (Depth %d)", *blackDepth),
		Cfg:  engine.SearchConfig{MaxDepth: *blackDepth, TimeLimit: *moveTime},
	}

	var (
		mu    sync.Mutex
		score = map[string]int{}
		draws int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallel)
	for i := 0; i < *totalGames; i++ {
		i := i // per-iteration copy (go.mod targets Go 1.21 loop semantics)
		// 轮流执红
		red, black := a, b
		if i%2 == 1 {
			red, black = b, a
		}
		g.Go(func() error {
			e := engine.NewEngine(engine.DefaultTTSize)
			res, err := playGame(gctx, e, red, black, *maxPlies, log.With().Int("game", i+1).Logger())
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}

			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "\n=== Game %d: Red [%s] vs Black [%s] ===\n", i+1, red.Name, black.Name)
			if *showBoard {
				fmt.Fprintln(out, renderBoard(out, res.Final, res.Last))
			}
			switch res.Winner {
			case "Red":
				score[red.Name]++
				fmt.Fprintf(out, "Result: %s wins (%s, %d plies)\n", red.Name, res.Reason, res.Plies)
			case "Black":
				score[black.Name]++
				fmt.Fprintf(out, "Result: %s wins (%s, %d plies)\n", black.Name, res.Reason, res.Plies)
			default:
				draws++
				fmt.Fprintf(out, "Result: Draw (%s, %d plies)\n", res.Reason, res.Plies)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("selfplay aborted")
	}

	fmt.Fprintf(out, "\n=== Final Score ===\n")
	if a.Name == b.Name {
		// 同深度时名字相同，只能合并显示
		fmt.Fprintf(out, "%s: %d\n", a.Name, score[a.Name])
	} else {
		fmt.Fprintf(out, "%s: %d\n", a.Name, score[a.Name])
		fmt.Fprintf(out, "%s: %d\n", b.Name, score[b.Name])
	}
	fmt.Fprintf(out, "Draws: %d\n", draws)
}
