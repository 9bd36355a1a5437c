//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/brandonr49/board-game-engine/internal/model"
	"github.com/brandonr49/board-game-engine/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

func createTestMatch(t *testing.T, repo *MatchRepo, creatorID string) *model.Match {
	t.Helper()
	m, err := repo.Create(context.Background(), &model.Match{
		CreatorID: creatorID,
		Seed:      42,
		Players: []model.MatchPlayer{
			{UserID: creatorID, DisplayName: "Alice", Seat: 0},
			{UserID: "bot:heuristic", DisplayName: "Bot", Seat: 1, IsBot: true, BotDifficulty: "heuristic"},
		},
	}, json.RawMessage(`{"turn_number":0}`))
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func TestUserCreateAndFind(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)
	ctx := context.Background()

	u, err := repo.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" || u.DisplayName != "Alice" {
		t.Fatalf("unexpected user %+v", u)
	}

	found, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.DisplayName != "Alice" {
		t.Fatalf("expected Alice, got %+v", found)
	}
}

func TestUserFindMissing(t *testing.T) {
	setup(t)
	u, err := NewUserRepo(testDB).FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestMatchCreateAndFind(t *testing.T) {
	setup(t)
	alice := testutil.SeedUser(t, testDB, "Alice")
	repo := NewMatchRepo(testDB)
	m := createTestMatch(t, repo, alice)

	if m.Status != model.MatchActive || m.Seed != 42 {
		t.Fatalf("unexpected match %+v", m)
	}

	found, err := repo.FindByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(found.Players))
	}
	if p := found.PlayerAt(1); p == nil || !p.IsBot || p.BotDifficulty != "heuristic" {
		t.Fatalf("bot seat not stored: %+v", p)
	}
}

func TestMatchSnapshot(t *testing.T) {
	setup(t)
	alice := testutil.SeedUser(t, testDB, "Alice")
	repo := NewMatchRepo(testDB)
	m := createTestMatch(t, repo, alice)
	ctx := context.Background()

	e := &model.MatchEvent{UserID: alice, Kind: "play_troop", Log: []string{"Alice plays"}}
	if err := repo.Commit(ctx, m.ID, json.RawMessage(`{"turn_number":7}`), e, nil); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, err := repo.LatestSnapshot(ctx, m.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var state map[string]any
	json.Unmarshal(got, &state)
	if state["turn_number"].(float64) != 7 {
		t.Fatalf("snapshot not replaced: %s", got)
	}
}

func TestMatchEventsSequence(t *testing.T) {
	setup(t)
	alice := testutil.SeedUser(t, testDB, "Alice")
	repo := NewMatchRepo(testDB)
	m := createTestMatch(t, repo, alice)
	ctx := context.Background()

	for _, kind := range []string{"play_troop", "draw_card", "pass"} {
		e := &model.MatchEvent{UserID: alice, Kind: kind, Log: []string{"Alice " + kind}}
		if err := repo.Commit(ctx, m.ID, json.RawMessage(`{}`), e, nil); err != nil {
			t.Fatalf("commit %s: %v", kind, err)
		}
		if e.Seq == 0 || e.ID == 0 {
			t.Fatalf("event not populated: %+v", e)
		}
	}

	events, err := repo.ListEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d has seq %d", i, e.Seq)
		}
	}
	if events[2].Kind != "pass" || events[2].Log[0] != "Alice pass" {
		t.Errorf("unexpected last event %+v", events[2])
	}
}

func TestMatchFinishAndListing(t *testing.T) {
	setup(t)
	alice := testutil.SeedUser(t, testDB, "Alice")
	repo := NewMatchRepo(testDB)
	ctx := context.Background()
	m1 := createTestMatch(t, repo, alice)
	createTestMatch(t, repo, alice)

	e := &model.MatchEvent{UserID: alice, Kind: "claim_flags"}
	outcome := &model.MatchOutcome{Winner: alice, Kind: "breakthrough"}
	if err := repo.Commit(ctx, m1.ID, json.RawMessage(`{}`), e, outcome); err != nil {
		t.Fatalf("finish: %v", err)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active match, got %d", len(active))
	}

	mine, err := repo.ListByUser(ctx, alice)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 matches for alice, got %d", len(mine))
	}

	found, _ := repo.FindByID(ctx, m1.ID)
	if found.Status != model.MatchFinished || found.Winner != alice || found.WinKind != "breakthrough" || found.FinishedAt == nil {
		t.Fatalf("finish not recorded: %+v", found)
	}
}

func TestMatchCommitRollsBack(t *testing.T) {
	setup(t)
	alice := testutil.SeedUser(t, testDB, "Alice")
	repo := NewMatchRepo(testDB)
	m := createTestMatch(t, repo, alice)
	ctx := context.Background()

	// The event insert fails after the snapshot update has run.
	e := &model.MatchEvent{UserID: alice, Kind: "play_troop", Action: json.RawMessage(`{not json`)}
	outcome := &model.MatchOutcome{Winner: alice, Kind: "breakthrough"}
	if err := repo.Commit(ctx, m.ID, json.RawMessage(`{"turn_number":9}`), e, outcome); err == nil {
		t.Fatal("expected commit to fail")
	}

	got, err := repo.LatestSnapshot(ctx, m.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var state map[string]any
	json.Unmarshal(got, &state)
	if state["turn_number"].(float64) != 0 {
		t.Fatalf("snapshot written despite failed commit: %s", got)
	}
	events, _ := repo.ListEvents(ctx, m.ID)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	found, _ := repo.FindByID(ctx, m.ID)
	if found.Status != model.MatchActive {
		t.Fatalf("status changed despite failed commit: %s", found.Status)
	}
}

func TestFindByMalformedID(t *testing.T) {
	setup(t)
	ctx := context.Background()

	m, err := NewMatchRepo(testDB).FindByID(ctx, "not-a-uuid")
	if err != nil || m != nil {
		t.Fatalf("expected nil, nil for a malformed match id, got %+v, %v", m, err)
	}
	u, err := NewUserRepo(testDB).FindByID(ctx, "not-a-uuid")
	if err != nil || u != nil {
		t.Fatalf("expected nil, nil for a malformed user id, got %+v, %v", u, err)
	}
}
