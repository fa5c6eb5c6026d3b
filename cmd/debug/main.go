package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"xiangqi/internal/notation"
	"xiangqi/internal/xiangqi"
)

func main() {
	fen := flag.String("fen", notation.InitialFEN, "position to inspect")
	depth := flag.Int("perft", 3, "perft depth (0 skips)")
	flag.Parse()

	b, side, err := notation.DecodeFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("FEN:", notation.EncodeFEN(b, side))
	fmt.Println(b)

	moves := xiangqi.LegalMoves(b, side)
	names := make([]string, 0, len(moves))
	for _, m := range moves {
		names = append(names, notation.FormatMove(m.From, m.To))
	}
	fmt.Println("Legal moves:", len(moves))
	fmt.Println(strings.Join(names, " "))
	fmt.Println("In check:", xiangqi.InCheck(b, side))

	for d := 1; d <= *depth; d++ {
		start := time.Now()
		n := xiangqi.Perft(b, side, d)
		fmt.Printf("perft(%d) = %d  %v\n", d, n, time.Since(start))
	}
}
