package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/bot"
	"github.com/brandonr49/board-game-engine/internal/logger"
	"github.com/brandonr49/board-game-engine/internal/model"
	"github.com/brandonr49/board-game-engine/internal/repository"
	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotInMatch     = errors.New("you are not in this match")
	ErrInvalidPlayers = errors.New("a match needs two distinct players")
	ErrMatchBusy      = errors.New("match is being updated elsewhere, retry")
)

const (
	lockTTL = 10 * time.Second
	// maxBotMoves bounds one run of consecutive bot actions.
	maxBotMoves = 500
)

// Opponent describes the second seat of a new match: either a registered
// user or a bot of the given difficulty.
type Opponent struct {
	UserID        string `json:"user_id,omitempty"`
	Bot           bool   `json:"bot"`
	BotDifficulty string `json:"bot_difficulty,omitempty"`
}

// MatchView is what one seated player sees of a match.
type MatchView struct {
	Match      *model.Match         `json:"match"`
	State      *battleline.View     `json:"state"`
	Phase      battleline.PhaseInfo `json:"phase"`
	WaitingFor []string             `json:"waiting_for"`
}

// SubmitResult reports the narration of an accepted action and of any bot
// moves that followed it.
type SubmitResult struct {
	Log      []string             `json:"log"`
	Phase    battleline.PhaseInfo `json:"phase"`
	GameOver bool                 `json:"game_over"`
}

// MatchOptions tunes a MatchService. Zero values pick defaults.
type MatchOptions struct {
	StateTTL      time.Duration
	BotDifficulty string
	Seed          func() int64
}

// MatchService hosts Battle Line matches: it serializes actions per match,
// keeps the live state in the cache and the durable record in the
// repository, and plays bot seats.
type MatchService struct {
	matchRepo   repository.MatchRepository
	userRepo    repository.UserRepository
	cache       repository.MatchCache
	broadcaster Broadcaster
	opts        MatchOptions

	matchLocks sync.Map
}

// NewMatchService creates a MatchService.
func NewMatchService(
	matchRepo repository.MatchRepository,
	userRepo repository.UserRepository,
	cache repository.MatchCache,
	broadcaster Broadcaster,
	opts MatchOptions,
) *MatchService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if opts.BotDifficulty == "" {
		opts.BotDifficulty = bot.DifficultyHeuristic
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &MatchService{
		matchRepo:   matchRepo,
		userRepo:    userRepo,
		cache:       cache,
		broadcaster: broadcaster,
		opts:        opts,
	}
}

func (s *MatchService) matchLock(matchID string) *sync.Mutex {
	v, _ := s.matchLocks.LoadOrStore(matchID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// lockMatch takes the in-process mutex and then the cache lock for a match.
// It returns ErrMatchBusy when another process holds the cache lock. The
// returned func releases both.
func (s *MatchService) lockMatch(ctx context.Context, matchID string) (func(), error) {
	mu := s.matchLock(matchID)
	mu.Lock()

	owner := logger.NewRequestID()
	ok, err := s.cache.AcquireLock(ctx, matchID, owner, lockTTL)
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("lock match: %w", err)
	}
	if !ok {
		mu.Unlock()
		return nil, ErrMatchBusy
	}
	return func() {
		if err := s.cache.ReleaseLock(ctx, matchID, owner); err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to release match lock")
		}
		mu.Unlock()
	}, nil
}

// CreateMatch seats the creator in seat 0 and the opponent in seat 1, deals
// a fresh seeded game and stores it.
func (s *MatchService) CreateMatch(ctx context.Context, creatorID string, opp Opponent) (*model.Match, error) {
	creator, err := s.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: unknown creator", ErrInvalidPlayers)
	}

	second, err := s.opponentSeat(ctx, creatorID, opp)
	if err != nil {
		return nil, err
	}
	players := []model.MatchPlayer{
		{UserID: creator.ID, DisplayName: creator.DisplayName, Seat: 0},
		second,
	}

	seed := s.opts.Seed()
	gs, err := battleline.NewInitialState(
		[]string{players[0].UserID, players[1].UserID},
		[]string{players[0].DisplayName, players[1].DisplayName},
		rand.New(rand.NewSource(seed)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlayers, err)
	}
	state, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}

	match, err := s.matchRepo.Create(ctx, &model.Match{CreatorID: creator.ID, Seed: seed, Players: players}, state)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMatchState(ctx, match.ID, state, s.opts.StateTTL); err != nil {
		log.Warn().Err(err).Str("matchId", match.ID).Msg("Failed to cache new match state")
	}

	l := logger.ForMatch(ctx, match.ID)
	l.Info().Str("creator", creator.ID).Str("opponent", second.UserID).Bool("bot", second.IsBot).
		Int64("seed", seed).Msg("Match created")

	unlock, err := s.lockMatch(ctx, match.ID)
	if err != nil {
		l.Error().Err(err).Msg("Could not lock new match for bot turn")
		return match, nil
	}
	defer unlock()
	if _, _, err := s.runBots(ctx, match, gs); err != nil {
		l.Error().Err(err).Msg("Bot failed to open match")
	}
	return match, nil
}

func (s *MatchService) opponentSeat(ctx context.Context, creatorID string, opp Opponent) (model.MatchPlayer, error) {
	if opp.Bot {
		difficulty := opp.BotDifficulty
		if difficulty == "" {
			difficulty = s.opts.BotDifficulty
		}
		if !bot.ValidDifficulty(difficulty) {
			return model.MatchPlayer{}, fmt.Errorf("%w: unknown bot difficulty %q", ErrInvalidPlayers, difficulty)
		}
		return model.MatchPlayer{
			UserID:        "bot:" + difficulty,
			DisplayName:   fmt.Sprintf("Bot (%s)", difficulty),
			Seat:          1,
			IsBot:         true,
			BotDifficulty: difficulty,
		}, nil
	}

	if opp.UserID == "" || opp.UserID == creatorID {
		return model.MatchPlayer{}, ErrInvalidPlayers
	}
	u, err := s.userRepo.FindByID(ctx, opp.UserID)
	if err != nil {
		return model.MatchPlayer{}, err
	}
	if u == nil {
		return model.MatchPlayer{}, fmt.Errorf("%w: unknown opponent", ErrInvalidPlayers)
	}
	return model.MatchPlayer{UserID: u.ID, DisplayName: u.DisplayName, Seat: 1}, nil
}

// GetMatch returns the match record.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// ListMatches returns the matches a user is seated in.
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]model.Match, error) {
	return s.matchRepo.ListByUser(ctx, userID)
}

// seatedMatch loads a match and checks that userID plays in it.
func (s *MatchService) seatedMatch(ctx context.Context, matchID, userID string) (*model.Match, error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Player(userID) == nil {
		return nil, ErrNotInMatch
	}
	return m, nil
}

// CheckSeat returns ErrMatchNotFound or ErrNotInMatch unless userID plays
// in the match.
func (s *MatchService) CheckSeat(ctx context.Context, matchID, userID string) error {
	_, err := s.seatedMatch(ctx, matchID, userID)
	return err
}

// loadState reads the live state from the cache, falling back to the
// durable snapshot and re-caching it.
func (s *MatchService) loadState(ctx context.Context, matchID string) (*battleline.GameState, error) {
	data, err := s.cache.GetMatchState(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("Cache read failed, using snapshot")
		data = nil
	}
	if data == nil {
		data, err = s.matchRepo.LatestSnapshot(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, ErrMatchNotFound
		}
		if err := s.cache.SetMatchState(ctx, matchID, data, s.opts.StateTTL); err != nil {
			log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to re-cache match state")
		}
	}

	var gs battleline.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal match state: %w", err)
	}
	return &gs, nil
}

// View returns the match as userID sees it: their own hand, the
// opponent's card backs and the phase description.
func (s *MatchService) View(ctx context.Context, matchID, userID string) (*MatchView, error) {
	m, err := s.seatedMatch(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	v, err := battleline.PlayerView(gs, userID)
	if err != nil {
		return nil, err
	}
	return &MatchView{
		Match:      m,
		State:      v,
		Phase:      battleline.GetPhaseInfo(gs),
		WaitingFor: battleline.WaitingFor(gs),
	}, nil
}

// ValidActions lists the wire form of every action userID may submit now.
func (s *MatchService) ValidActions(ctx context.Context, matchID, userID string) ([]battleline.ActionInput, error) {
	if _, err := s.seatedMatch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	gs, err := s.loadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	actions := battleline.ValidActions(gs, userID)
	out := make([]battleline.ActionInput, 0, len(actions))
	for _, a := range actions {
		out = append(out, battleline.EncodeAction(a))
	}
	return out, nil
}

// SubmitAction applies one action for userID. Actions on the same match are
// serialized in-process and across processes by the cache lock. A rejected
// action leaves every store untouched. Bot seats then move until a human is
// to act or the match ends.
func (s *MatchService) SubmitAction(ctx context.Context, matchID, userID string, in battleline.ActionInput) (*SubmitResult, error) {
	m, err := s.seatedMatch(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	action, err := battleline.ParseAction(in)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	gs, err := s.loadState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	res, err := battleline.ApplyAction(gs, userID, action)
	if err != nil {
		l := logger.ForMatch(ctx, matchID)
		l.Debug().Err(err).Str("userId", userID).Str("kind", string(action.Kind())).Msg("Action rejected")
		return nil, err
	}
	if err := s.commit(ctx, m, userID, action, res); err != nil {
		return nil, err
	}

	final, botLog, err := s.runBots(ctx, m, res.State)
	if err != nil {
		l := logger.ForMatch(ctx, matchID)
		l.Error().Err(err).Msg("Bot turn failed")
	}
	return &SubmitResult{
		Log:      append(res.Log, botLog...),
		Phase:    battleline.GetPhaseInfo(final),
		GameOver: final.Over(),
	}, nil
}

// commit stores an accepted result. The snapshot, event and finished
// status go to the repository in one transaction; the cache is refreshed
// only once that has succeeded, then the update is broadcast.
func (s *MatchService) commit(ctx context.Context, m *model.Match, userID string, action battleline.Action, res *battleline.ActionResult) error {
	state, err := json.Marshal(res.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	encoded, err := json.Marshal(battleline.EncodeAction(action))
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	event := &model.MatchEvent{
		MatchID: m.ID,
		UserID:  userID,
		Kind:    string(action.Kind()),
		Action:  encoded,
		Log:     res.Log,
	}
	var finished *model.MatchOutcome
	if res.GameOver {
		winner, kind := outcome(res.State)
		finished = &model.MatchOutcome{Winner: winner, Kind: kind}
	}

	if err := s.matchRepo.Commit(ctx, m.ID, state, event, finished); err != nil {
		return err
	}

	if err := s.cache.SetMatchState(ctx, m.ID, state, s.opts.StateTTL); err != nil {
		log.Warn().Err(err).Str("matchId", m.ID).Msg("Failed to cache match state")
	}

	phase := battleline.GetPhaseInfo(res.State)
	s.broadcaster.BroadcastMatchEvent(m.ID, EventMatchUpdated, map[string]any{
		"seq":   event.Seq,
		"kind":  event.Kind,
		"log":   res.Log,
		"phase": phase,
	})

	if finished == nil {
		return nil
	}
	l := logger.ForMatch(ctx, m.ID)
	l.Info().Str("winner", finished.Winner).Str("kind", finished.Kind).Int("turn", res.State.TurnNumber).Msg("Match finished")
	s.broadcaster.BroadcastMatchEvent(m.ID, EventMatchFinished, map[string]any{
		"winner": finished.Winner,
		"kind":   finished.Kind,
	})
	return nil
}

// outcome returns the stored winner (a player ID or "draw") and victory kind.
func outcome(gs *battleline.GameState) (winner, kind string) {
	if gs.Winner == battleline.Draw {
		return model.WinnerDraw, ""
	}
	if _, k, ok := battleline.CheckWinner(gs); ok {
		kind = string(k)
	}
	return gs.PlayerIDs[gs.Winner], kind
}

// runBots plays bot seats while one of them is to move and returns the
// last committed state. The caller must hold lockMatch.
func (s *MatchService) runBots(ctx context.Context, m *model.Match, gs *battleline.GameState) (*battleline.GameState, []string, error) {
	var out []string
	for moves := 0; !gs.Over(); moves++ {
		p := m.PlayerAt(gs.CurrentPlayer)
		if p == nil || !p.IsBot {
			break
		}
		if moves >= maxBotMoves {
			return gs, out, fmt.Errorf("bot exceeded %d consecutive moves", maxBotMoves)
		}
		if err := ctx.Err(); err != nil {
			return gs, out, err
		}

		strategy := bot.StrategyForDifficulty(p.BotDifficulty)
		action := strategy.ChooseAction(gs, gs.CurrentPlayer)
		if action == nil {
			return gs, out, fmt.Errorf("seat %d: %w", gs.CurrentPlayer, bot.ErrNoAction)
		}
		res, err := battleline.ApplyAction(gs, p.UserID, action)
		if err != nil {
			return gs, out, fmt.Errorf("bot %s: %w", action.Kind(), err)
		}
		if err := s.commit(ctx, m, p.UserID, action, res); err != nil {
			return gs, out, err
		}
		log.Debug().Str("matchId", m.ID).Str("strategy", strategy.Name()).Str("kind", string(action.Kind())).Msg("Bot moved")
		out = append(out, res.Log...)
		gs = res.State
	}
	return gs, out, nil
}

// Events returns the narration history of a match in order.
func (s *MatchService) Events(ctx context.Context, matchID, userID string) ([]model.MatchEvent, error) {
	if _, err := s.seatedMatch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListEvents(ctx, matchID)
}

// RecoverActiveMatches rehydrates the cache from durable snapshots after a
// restart and lets bots finish any turn they were in the middle of.
func (s *MatchService) RecoverActiveMatches(ctx context.Context) error {
	matches, err := s.matchRepo.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		log.Info().Msg("No active matches to recover")
		return nil
	}
	log.Info().Int("count", len(matches)).Msg("Recovering active matches after restart")

	for _, summary := range matches {
		s.recoverMatch(ctx, summary.ID)
	}
	return nil
}

// recoverMatch restores one match under its lock. A match locked by another
// process is left to that process.
func (s *MatchService) recoverMatch(ctx context.Context, matchID string) {
	unlock, err := s.lockMatch(ctx, matchID)
	if errors.Is(err, ErrMatchBusy) {
		log.Info().Str("matchId", matchID).Msg("Match locked elsewhere, skipping recovery")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to lock match during recovery")
		return
	}
	defer unlock()

	data, err := s.matchRepo.LatestSnapshot(ctx, matchID)
	if err != nil || data == nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to load snapshot during recovery")
		return
	}
	if err := s.cache.SetMatchState(ctx, matchID, data, s.opts.StateTTL); err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to restore match state")
		return
	}

	m, err := s.matchRepo.FindByID(ctx, matchID)
	if err != nil || m == nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to load match during recovery")
		return
	}
	var gs battleline.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to unmarshal state for recovery")
		return
	}

	final, _, err := s.runBots(ctx, m, &gs)
	if err != nil {
		log.Error().Err(err).Str("matchId", matchID).Msg("Bot failed during recovery")
	}
	log.Info().Str("matchId", matchID).Int("turn", final.TurnNumber).Msg("Recovered match")
}
