package main

import (
	"context"
	"testing"

	"github.com/brandonr49/board-game-engine/internal/bot"
	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

func TestParseMatchup(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]string
		wantErr bool
	}{
		{"heuristic-vs-random", [2]string{"heuristic", "random"}, false},
		{" Easy-vs-Medium ", [2]string{"easy", "medium"}, false},
		{"random", [2]string{"random", "random"}, false},
		{"hard-vs-random", [2]string{}, true},
		{"", [2]string{}, true},
	}
	for _, tt := range tests {
		got, err := parseMatchup(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMatchup(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMatchup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []*bot.ArenaResult{
		{Winner: 0, Kind: battleline.Breakthrough, Turns: 20, FlagsClaimed: [2]int{3, 1}},
		{Winner: 1, Kind: battleline.Envelopment, Turns: 30, FlagsClaimed: [2]int{2, 5}},
		{Winner: battleline.NoWinner, Capped: true, Turns: 40},
		nil, // failed match
	}
	s := summarize(results)

	if s.Completed != 3 || s.Wins != [2]int{1, 1} || s.Capped != 1 || s.Draws != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Kinds[string(battleline.Breakthrough)] != 1 || s.Kinds[string(battleline.Envelopment)] != 1 {
		t.Errorf("unexpected kinds %v", s.Kinds)
	}
	if s.AvgTurns != 30 {
		t.Errorf("expected avg turns 30, got %v", s.AvgTurns)
	}
	if s.AvgFlags[1] != 2 {
		t.Errorf("expected seat 1 avg flags 2, got %v", s.AvgFlags[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil)
	if s.Completed != 0 || s.AvgTurns != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestSeededBatchReplays(t *testing.T) {
	diffs := [2]string{bot.DifficultyHeuristic, bot.DifficultyRandom}
	batch := func() []bot.ArenaResult {
		var out []bot.ArenaResult
		for idx := range 3 {
			res, err := bot.RunMatch(context.Background(), bot.NewArenaConfig(diffs, matchSeed(40, idx), 0))
			if err != nil {
				t.Fatalf("match %d: %v", idx, err)
			}
			out = append(out, *res)
		}
		return out
	}

	a, b := batch(), batch()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("match %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].Seed != 40+int64(i) {
			t.Errorf("match %d seed = %d", i, a[i].Seed)
		}
	}
	if matchSeed(0, 3) != 0 {
		t.Error("zero base should leave the seed to the match")
	}
}
