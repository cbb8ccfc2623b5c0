package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetRatings(ctx context.Context, userIDs []int) (map[int]int, error) {
	out := make(map[int]int, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			out[id] = u.Rating
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRating(ctx context.Context, exec repositories.SQLExecutor, id, rating, gamesPlayed int) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Rating = rating
	u.GamesPlayed = gamesPlayed
	return nil
}

type placementRecord struct {
	UserID    int
	Placement int
	PrizeWon  float64
}

type fakePlayerRepo struct {
	players    []*models.TournamentPlayer
	placements []placementRecord
}

func (r *fakePlayerRepo) Register(ctx context.Context, p *models.TournamentPlayer) error {
	for _, existing := range r.players {
		if existing.UserID == p.UserID && existing.TournamentID == p.TournamentID {
			return repositories.ErrPlayerAlreadyRegistered
		}
	}
	p.ID = len(r.players) + 1
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now()
	}
	r.players = append(r.players, p)
	return nil
}

func (r *fakePlayerRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error) {
	var out []*models.TournamentPlayer
	for _, p := range r.players {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateSeedNumber(ctx context.Context, exec repositories.SQLExecutor, id int, seedNumber *int) error {
	for _, p := range r.players {
		if p.ID == id {
			p.SeedNumber = seedNumber
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) UpdateProgress(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID, currentRound int, isEliminated bool) error {
	for _, p := range r.players {
		if p.TournamentID == tournamentID && p.UserID == userID {
			p.CurrentRound = currentRound
			p.IsEliminated = isEliminated
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) UpdatePlacement(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID, placement int, prizeWon float64) error {
	r.placements = append(r.placements, placementRecord{UserID: userID, Placement: placement, PrizeWon: prizeWon})
	return nil
}

func (r *fakePlayerRepo) ResetProgress(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for _, p := range r.players {
		if p.TournamentID == tournamentID {
			p.CurrentRound = 1
			p.IsEliminated = false
			p.Placement = nil
			p.PrizeWon = nil
		}
	}
	return nil
}

type fakePayoutRepo struct {
	payouts []*models.PrizePayout
}

func (r *fakePayoutRepo) Create(ctx context.Context, exec repositories.SQLExecutor, payout *models.PrizePayout) error {
	r.payouts = append(r.payouts, payout)
	return nil
}

func (r *fakePayoutRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PrizePayout, error) {
	var out []*models.PrizePayout
	for _, p := range r.payouts {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePayoutRepo) ExistsForTournament(ctx context.Context, tournamentID int) (bool, error) {
	for _, p := range r.payouts {
		if p.TournamentID == tournamentID {
			return true, nil
		}
	}
	return false, nil
}

type fakePayment struct {
	sent []*models.PrizePayout
	err  error
}

func (p *fakePayment) SendPayout(ctx context.Context, payout *models.PrizePayout) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, payout)
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.tournaments {
		if status == nil || t.Status == *status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) ListDueForStart(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.StatusOpen && !t.StartAt.IsZero() && !t.StartAt.After(now) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	started []int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = len(r.matches) + 1
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdatePlayersAndStatus(ctx context.Context, exec repositories.SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Player1ID, m.Player2ID, m.Status = player1ID, player2ID, status
	return nil
}

func (r *fakeMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) MarkStarted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusActive
	now := time.Now()
	m.StartedAt = &now
	r.started = append(r.started, id)
	return nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result models.MatchResult, winnerID *int, duration *int, gameData *string) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Result, m.WinnerID, m.Status = result, winnerID, models.MatchStatusCompleted
	return nil
}

func (r *fakeMatchRepo) ClearResult(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Result, m.WinnerID, m.Status = models.ResultPending, nil, models.MatchStatusActive
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

// fakeBracketService marks the tournament active instead of building a real
// bracket, which is enough for lifecycle tests.
type fakeBracketService struct {
	repo      *fakeTournamentRepo
	generated []int
	err       error
}

func (s *fakeBracketService) GenerateBracket(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.generated = append(s.generated, tournamentID)
	if t, ok := s.repo.tournaments[tournamentID]; ok && t.Status == models.StatusOpen {
		t.Status = models.StatusActive
	}
	return &models.Bracket{TournamentID: tournamentID}, nil
}

func (s *fakeBracketService) GetBracket(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	return &models.Bracket{TournamentID: tournamentID}, nil
}

func (s *fakeBracketService) GetFullTournamentData(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	return s.repo.GetByID(ctx, tournamentID)
}
