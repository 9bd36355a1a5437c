// Command botmatch plays bot-vs-bot Battle Line matches and prints a summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/bot"
	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		matchup  string
		numGames int
		workers  int
		maxMoves int
		seed     int64
		jsonOut  bool
		verbose  bool
	)

	flag.StringVar(&matchup, "matchup", "heuristic-vs-random", "Seat 0 vs seat 1 difficulty (e.g. heuristic-vs-random)")
	flag.IntVar(&numGames, "n", 10, "Number of matches to run")
	flag.IntVar(&workers, "workers", 4, "Concurrency (parallel matches)")
	flag.IntVar(&maxMoves, "max-moves", bot.DefaultMaxMoves, "Move cap per match")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.BoolVar(&verbose, "v", false, "Debug logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	diffs, err := parseMatchup(matchup)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad matchup")
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	results := make([]*bot.ArenaResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := bot.RunMatch(ctx, bot.NewArenaConfig(diffs, matchSeed(seed, idx), maxMoves))
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().
				Int("match", idx+1).
				Int64("seed", result.Seed).
				Int("winner", result.Winner).
				Str("kind", string(result.Kind)).
				Int("turns", result.Turns).
				Msg("Match completed")
		}(i)
	}

	wg.Wait()

	s := summarize(results)
	if jsonOut {
		printJSON(s, results, numGames, errCount)
		return
	}
	printSummary(s, diffs, errCount)
}

// matchSeed is the seed of the idx-th match in a batch. A zero base leaves
// each match to pick its own.
func matchSeed(base int64, idx int) int64 {
	if base == 0 {
		return 0
	}
	return base + int64(idx)
}

// parseMatchup turns "a-vs-b" into two difficulties. A single name plays
// itself.
func parseMatchup(s string) ([2]string, error) {
	a, b, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-vs-")
	if !found {
		b = a
	}
	for _, d := range []string{a, b} {
		if !bot.ValidDifficulty(d) {
			return [2]string{}, fmt.Errorf("unknown difficulty %q", d)
		}
	}
	return [2]string{a, b}, nil
}

type summary struct {
	Completed int            `json:"completed"`
	Wins      [2]int         `json:"wins"`
	Draws     int            `json:"draws"`
	Capped    int            `json:"capped"`
	Kinds     map[string]int `json:"kinds"`
	AvgTurns  float64        `json:"avg_turns"`
	AvgFlags  [2]float64     `json:"avg_flags"`
}

func summarize(results []*bot.ArenaResult) summary {
	s := summary{Kinds: make(map[string]int)}
	turns := 0
	var flags [2]int
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Completed++
		turns += r.Turns
		flags[0] += r.FlagsClaimed[0]
		flags[1] += r.FlagsClaimed[1]
		switch {
		case r.Capped:
			s.Capped++
		case r.Winner == battleline.Draw:
			s.Draws++
		case r.Winner == 0 || r.Winner == 1:
			s.Wins[r.Winner]++
			s.Kinds[string(r.Kind)]++
		}
	}
	if s.Completed > 0 {
		n := float64(s.Completed)
		s.AvgTurns = float64(turns) / n
		s.AvgFlags = [2]float64{float64(flags[0]) / n, float64(flags[1]) / n}
	}
	return s
}

func printSummary(s summary, diffs [2]string, errCount int) {
	fmt.Printf("\nResults (%d matches, %s vs %s):\n", s.Completed, diffs[0], diffs[1])
	if errCount > 0 {
		fmt.Printf("  (%d matches failed)\n", errCount)
	}
	for seat := range 2 {
		pct := 0.0
		if s.Completed > 0 {
			pct = 100 * float64(s.Wins[seat]) / float64(s.Completed)
		}
		fmt.Printf("  seat %d %-10s %3d wins (%5.1f%%)  avg flags %.1f\n", seat, diffs[seat], s.Wins[seat], pct, s.AvgFlags[seat])
	}
	fmt.Printf("  draws %d, capped %d, avg turns %.1f\n", s.Draws, s.Capped, s.AvgTurns)

	kinds := make([]string, 0, len(s.Kinds))
	for k := range s.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-14s %d\n", k, s.Kinds[k])
	}
}

func printJSON(s summary, results []*bot.ArenaResult, total, errCount int) {
	out := struct {
		Total   int                `json:"total"`
		Errors  int                `json:"errors"`
		Summary summary            `json:"summary"`
		Results []*bot.ArenaResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Summary: s,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
