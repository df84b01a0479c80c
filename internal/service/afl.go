package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/metrics"
	"github.com/fortuna/augur/internal/sources/footywire"
)

// AFLFixtures is the fixture response for a season, optionally narrowed
// to one round.
type AFLFixtures struct {
	Year     int                 `json:"year"`
	Round    int                 `json:"round,omitempty"`
	Fixtures []footywire.Fixture `json:"fixtures"`
	Warning  string              `json:"warning,omitempty"`
}

// AFLLadder is the current premiership ladder.
type AFLLadder struct {
	Ladder  []footywire.LadderEntry `json:"ladder"`
	Warning string                  `json:"warning,omitempty"`
}

// AFLService scrapes and caches FootyWire fixtures and the ladder.
type AFLService struct {
	client *footywire.Client
	cache  *cache.RedisCache
	log    *zap.SugaredLogger
}

// NewAFLService creates a new AFL service
func NewAFLService(client *footywire.Client, redis *cache.RedisCache, log *zap.SugaredLogger) *AFLService {
	return &AFLService{client: client, cache: redis, log: log}
}

// Fixtures returns the fixture list for a year. round 0 means all
// rounds. Scrape failures degrade to an empty list with a warning.
func (s *AFLService) Fixtures(ctx context.Context, year, round int) (*AFLFixtures, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	resp := &AFLFixtures{Year: year, Round: round, Fixtures: []footywire.Fixture{}}

	fixtures, ok := s.cachedFixtures(ctx, year)
	if !ok {
		var err error
		fixtures, err = s.client.Fixtures(ctx, year)
		if err != nil {
			metrics.ScrapeFailures.WithLabelValues("footywire").Inc()
			s.log.Warnf("⚠️ FootyWire fixtures for %d: %v", year, err)
			resp.Warning = "fixture source unavailable"
			return resp, nil
		}
		if s.cache != nil {
			if err := s.cache.SetJSON(ctx, cache.AFLFixturesKey(year), fixtures, cache.AFLTTL); err != nil {
				s.log.Warnf("⚠️ caching AFL fixtures: %v", err)
			}
		}
	}

	if round > 0 {
		for _, f := range fixtures {
			if f.Round == round {
				resp.Fixtures = append(resp.Fixtures, f)
			}
		}
	} else {
		resp.Fixtures = fixtures
	}
	return resp, nil
}

func (s *AFLService) cachedFixtures(ctx context.Context, year int) ([]footywire.Fixture, bool) {
	if s.cache == nil {
		return nil, false
	}
	var fixtures []footywire.Fixture
	hit, err := s.cache.GetJSON(ctx, cache.AFLFixturesKey(year), &fixtures)
	if err != nil {
		s.log.Warnf("⚠️ reading AFL fixture cache: %v", err)
		return nil, false
	}
	return fixtures, hit
}

// Ladder returns the current premiership ladder. Scrape failures
// degrade to an empty ladder with a warning.
func (s *AFLService) Ladder(ctx context.Context) (*AFLLadder, error) {
	resp := &AFLLadder{Ladder: []footywire.LadderEntry{}}

	if s.cache != nil {
		var ladder []footywire.LadderEntry
		if hit, err := s.cache.GetJSON(ctx, cache.AFLLadderKey(), &ladder); err != nil {
			s.log.Warnf("⚠️ reading AFL ladder cache: %v", err)
		} else if hit {
			resp.Ladder = ladder
			return resp, nil
		}
	}

	ladder, err := s.client.Ladder(ctx)
	if err != nil {
		metrics.ScrapeFailures.WithLabelValues("footywire").Inc()
		s.log.Warnf("⚠️ FootyWire ladder: %v", err)
		resp.Warning = "ladder source unavailable"
		return resp, nil
	}
	resp.Ladder = ladder

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.AFLLadderKey(), ladder, cache.AFLTTL); err != nil {
			s.log.Warnf("⚠️ caching AFL ladder: %v", err)
		}
	}
	return resp, nil
}
