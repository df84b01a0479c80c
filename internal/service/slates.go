package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/metrics"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/sources/balldontlie"
	"github.com/fortuna/augur/internal/sources/espn"
	"github.com/fortuna/augur/internal/sources/nbastats"
	"github.com/fortuna/augur/internal/store"
)

// SlateGame is one scheduled or in-progress game on a date.
type SlateGame struct {
	BDLGameID  int64      `json:"bdl_game_id,omitempty"`
	ESPNGameID string     `json:"espn_game_id,omitempty"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	HomeScore  int        `json:"home_score"`
	AwayScore  int        `json:"away_score"`
	Status     string     `json:"status"`
	Period     int        `json:"period,omitempty"`
	Clock      string     `json:"clock,omitempty"`
	Tipoff     *time.Time `json:"tipoff,omitempty"`
	Source     string     `json:"source"`
}

// Slate is the full schedule for a date.
type Slate struct {
	Date    string      `json:"date"`
	Games   []SlateGame `json:"games"`
	Warning string      `json:"warning,omitempty"`
}

type gameWriter interface {
	Upsert(ctx context.Context, game *store.Game) error
}

// SlateService assembles the day's games from BDL with ESPN filling gaps.
type SlateService struct {
	bdl    *balldontlie.Client
	espn   *espn.Client
	games  gameWriter
	cache  *cache.RedisCache
	stream *publisher.RedisStreamPublisher
	log    *zap.SugaredLogger
}

// NewSlateService creates the service. games, cache and stream may be nil.
func NewSlateService(bdl *balldontlie.Client, espnClient *espn.Client, games gameWriter, redis *cache.RedisCache, stream *publisher.RedisStreamPublisher, log *zap.SugaredLogger) *SlateService {
	return &SlateService{
		bdl:    bdl,
		espn:   espnClient,
		games:  games,
		cache:  redis,
		stream: stream,
		log:    log,
	}
}

// Slate returns the games scheduled on date. Both sources failing is not
// an error; the caller gets an empty slate with a warning instead.
func (s *SlateService) Slate(ctx context.Context, date time.Time) (*Slate, error) {
	dateKey := date.Format("2006-01-02")

	if s.cache != nil {
		var cached Slate
		if hit, err := s.cache.GetJSON(ctx, cache.SlateKey(date), &cached); err != nil {
			s.log.Warnf("⚠️ reading slate cache: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	slate := &Slate{Date: dateKey, Games: []SlateGame{}}

	bdlGames, bdlErr := s.bdl.GamesByDate(ctx, date)
	if bdlErr != nil {
		metrics.ScrapeFailures.WithLabelValues("balldontlie").Inc()
		s.log.Warnf("⚠️ BDL games for %s: %v", dateKey, bdlErr)
	}
	for _, g := range bdlGames {
		slate.Games = append(slate.Games, slateGameFromBDL(g))
	}

	var espnErr error
	if s.espn != nil {
		var espnGames []espn.Game
		espnGames, espnErr = s.espn.Scoreboard(ctx, date)
		if espnErr != nil {
			metrics.ScrapeFailures.WithLabelValues("espn").Inc()
			s.log.Warnf("⚠️ ESPN scoreboard for %s: %v", dateKey, espnErr)
		}
		slate.Games = mergeESPN(slate.Games, espnGames)
	}

	switch {
	case bdlErr != nil && (s.espn == nil || espnErr != nil):
		slate.Warning = "no slate source available"
	case bdlErr != nil:
		slate.Warning = "BallDontLie unavailable, slate from ESPN only"
	}

	sort.Slice(slate.Games, func(i, j int) bool {
		ti, tj := slate.Games[i].Tipoff, slate.Games[j].Tipoff
		if ti == nil || tj == nil || ti.Equal(*tj) {
			return slate.Games[i].HomeTeam < slate.Games[j].HomeTeam
		}
		return ti.Before(*tj)
	})

	s.persist(ctx, date, slate.Games)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.SlateKey(date), slate, cache.SlateTTL); err != nil {
			s.log.Warnf("⚠️ caching slate: %v", err)
		}
	}
	if s.stream != nil && len(slate.Games) > 0 {
		if err := s.stream.PublishSlateUpdate(ctx, dateKey, slate.Games); err != nil {
			s.log.Warnf("⚠️ publishing slate update: %v", err)
		}
	}

	s.log.Infof("✓ slate for %s: %d games", dateKey, len(slate.Games))
	return slate, nil
}

// mergeESPN appends ESPN games whose team pair is not already covered by
// a BDL row.
func mergeESPN(games []SlateGame, espnGames []espn.Game) []SlateGame {
	seen := make(map[string]bool, len(games))
	for _, g := range games {
		seen[pairKey(g.HomeTeam, g.AwayTeam)] = true
	}
	for _, g := range espnGames {
		if seen[pairKey(g.HomeTeam, g.AwayTeam)] {
			continue
		}
		games = append(games, slateGameFromESPN(g))
	}
	return games
}

func pairKey(home, away string) string {
	return nbastats.NormalizeAbbr(home) + "@" + nbastats.NormalizeAbbr(away)
}

func slateGameFromBDL(g balldontlie.Game) SlateGame {
	sg := SlateGame{
		BDLGameID: g.ID,
		HomeTeam:  nbastats.NormalizeAbbr(g.HomeTeam.Abbreviation),
		AwayTeam:  nbastats.NormalizeAbbr(g.VisitorTeam.Abbreviation),
		HomeScore: g.HomeTeamScore,
		AwayScore: g.VisitorTeamScore,
		Status:    g.Status,
		Period:    g.Period,
		Clock:     g.Time,
		Source:    store.SourceBallDontLie,
	}
	if tip := g.Tipoff(); !tip.IsZero() {
		sg.Tipoff = &tip
	}
	return sg
}

func slateGameFromESPN(g espn.Game) SlateGame {
	sg := SlateGame{
		ESPNGameID: g.ESPNID,
		HomeTeam:   nbastats.NormalizeAbbr(g.HomeTeam),
		AwayTeam:   nbastats.NormalizeAbbr(g.AwayTeam),
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		Status:     g.Status,
		Period:     g.Period,
		Clock:      g.Clock,
		Source:     store.SourceESPN,
	}
	if !g.Tipoff.IsZero() {
		tip := g.Tipoff
		sg.Tipoff = &tip
	}
	return sg
}

// persist upserts fresh rows into the games table so the settlement
// resolver can reuse them. Failures are logged, never fatal.
func (s *SlateService) persist(ctx context.Context, date time.Time, games []SlateGame) {
	if s.games == nil {
		return
	}
	for _, g := range games {
		row := &store.Game{
			HomeTeam:  g.HomeTeam,
			AwayTeam:  g.AwayTeam,
			HomeScore: sql.NullInt32{Int32: int32(g.HomeScore), Valid: true},
			AwayScore: sql.NullInt32{Int32: int32(g.AwayScore), Valid: true},
			Period:    sql.NullInt32{Int32: int32(g.Period), Valid: true},
			GameDate:  date,
			Status:    g.Status,
			Source:    g.Source,
		}
		if g.BDLGameID != 0 {
			row.BDLGameID = sql.NullInt64{Int64: g.BDLGameID, Valid: true}
		}
		if g.ESPNGameID != "" {
			row.ESPNGameID = sql.NullString{String: g.ESPNGameID, Valid: true}
		}
		if g.Clock != "" {
			row.Clock = sql.NullString{String: strings.TrimSpace(g.Clock), Valid: true}
		}
		if g.Tipoff != nil {
			row.Tipoff = sql.NullTime{Time: *g.Tipoff, Valid: true}
		}
		if err := s.games.Upsert(ctx, row); err != nil {
			s.log.Warnf("⚠️ caching game %s @ %s: %v", g.AwayTeam, g.HomeTeam, err)
		}
	}
}

// Today returns the slate for the current date in US Eastern time, the
// NBA's scheduling timezone.
func (s *SlateService) Today(ctx context.Context) (*Slate, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.Slate(ctx, day)
}

// ParseSlateDate validates a YYYY-MM-DD query parameter.
func ParseSlateDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
