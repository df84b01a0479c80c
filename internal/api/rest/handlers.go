package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/dvp"
	"github.com/fortuna/augur/internal/service"
	"github.com/fortuna/augur/internal/settlement"
	"github.com/fortuna/augur/internal/sources/nbastats"
	"github.com/fortuna/augur/internal/store"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	dvpService    *service.DvPService
	chartService  *service.DepthChartService
	slateService  *service.SlateService
	playerService *service.PlayerService
	aflService    *service.AFLService
	betService    *service.BetService

	db         *store.Database
	cache      *cache.RedisCache
	cronSecret string
	log        *zap.SugaredLogger
}

// HealthCheck reports liveness plus per-component pings.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "healthy"

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			components["postgres"] = err.Error()
			status = "degraded"
		} else {
			components["postgres"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			components["redis"] = err.Error()
			status = "degraded"
		} else {
			components["redis"] = "ok"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"service":    "augur",
		"version":    "1.0.0",
		"components": components,
	})
}

// GetDvP returns one team's defense-vs-position table for a metric.
func (h *Handler) GetDvP(w http.ResponseWriter, r *http.Request) {
	team := nbastats.NormalizeAbbr(r.URL.Query().Get("team"))
	if team == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'team'", nil)
		return
	}
	if _, ok := nbastats.TeamIDByAbbr[team]; !ok {
		respondError(w, http.StatusBadRequest, "Unknown team abbreviation", nil)
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "pts"
	}
	if !dvp.ValidMetric(metric) {
		respondError(w, http.StatusBadRequest, "Unknown metric", nil)
		return
	}

	season := queryInt(r, "season", nbastats.CurrentSeasonStartYear(time.Now()))
	games := queryInt(r, "games", dvp.DefaultSampleGames)
	recalculate := queryBool(r, "recalculate")

	table, err := h.dvpService.GetMetric(r.Context(), team, season, games, metric, recalculate)
	if err != nil {
		h.log.Warnf("⚠️ DvP for %s: %v", team, err)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"team":         team,
			"season":       season,
			"metric":       metric,
			"sample_games": games,
			"perGame":      map[string]float64{},
			"totals":       map[string]float64{},
			"warning":      "stats source unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.TeamDvP
	}{true, table})
}

// GetLeagueDvP returns every team's table for one metric.
func (h *Handler) GetLeagueDvP(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "pts"
	}
	if !dvp.ValidMetric(metric) {
		respondError(w, http.StatusBadRequest, "Unknown metric", nil)
		return
	}

	season := queryInt(r, "season", nbastats.CurrentSeasonStartYear(time.Now()))
	games := queryInt(r, "games", dvp.DefaultSampleGames)
	recalculate := queryBool(r, "recalculate")

	tables, failed, err := h.dvpService.League(r.Context(), season, games, metric, recalculate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid league request", err)
		return
	}

	response := map[string]interface{}{
		"success":      true,
		"season":       season,
		"metric":       metric,
		"sample_games": games,
		"teams":        tables,
		"count":        len(tables),
	}
	if len(failed) > 0 {
		response["failed"] = failed
		response["warning"] = "some teams could not be computed"
	}
	respondJSON(w, http.StatusOK, response)
}

// GetDepthCharts returns the scraped depth charts for all teams.
func (h *Handler) GetDepthCharts(w http.ResponseWriter, r *http.Request) {
	recalculate := queryBool(r, "recalculate")

	snap, err := h.chartService.Charts(r.Context(), recalculate)
	if err != nil {
		h.log.Warnf("⚠️ depth charts: %v", err)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"teams":   []interface{}{},
			"warning": "depth charts unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"teams":      snap.Teams,
		"scraped_at": snap.ScrapedAt,
	})
}

// GetGamesByDate returns the slate for a date (default: today, Eastern).
func (h *Handler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.GetTodaysGames(w, r)
		return
	}

	date, err := service.ParseSlateDate(dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	slate, err := h.slateService.Slate(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	respondSlate(w, slate)
}

// GetTodaysGames returns the slate for today's Eastern date.
func (h *Handler) GetTodaysGames(w http.ResponseWriter, r *http.Request) {
	slate, err := h.slateService.Today(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch today's games", err)
		return
	}

	respondSlate(w, slate)
}

func respondSlate(w http.ResponseWriter, slate *service.Slate) {
	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.Slate
		Count int `json:"count"`
	}{true, slate, len(slate.Games)})
}

// SearchPlayers searches BDL players by name.
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if len(name) < 2 {
		respondError(w, http.StatusBadRequest, "Query parameter 'name' must be at least 2 characters", nil)
		return
	}

	players, err := h.playerService.Search(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to search players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"players": players,
		"count":   len(players),
	})
}

// GetPlayerAverages returns a player's season averages.
func (h *Handler) GetPlayerAverages(w http.ResponseWriter, r *http.Request) {
	playerIDStr := r.URL.Query().Get("player_id")
	if playerIDStr == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'player_id'", nil)
		return
	}
	playerID, err := strconv.ParseInt(playerIDStr, 10, 64)
	if err != nil || playerID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid player_id", err)
		return
	}

	season := queryInt(r, "season", 0)

	averages, err := h.playerService.Averages(r.Context(), playerID, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch season averages", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"player_id": playerID,
		"averages":  averages,
	})
}

// GetAFLFixtures returns the AFL fixture list, optionally one round.
func (h *Handler) GetAFLFixtures(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", 0)
	round := queryInt(r, "round", 0)

	fixtures, err := h.aflService.Fixtures(r.Context(), year, round)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch fixtures", err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.AFLFixtures
		Count int `json:"count"`
	}{true, fixtures, len(fixtures.Fixtures)})
}

// GetAFLLadder returns the AFL premiership ladder.
func (h *Handler) GetAFLLadder(w http.ResponseWriter, r *http.Request) {
	ladder, err := h.aflService.Ladder(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch ladder", err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.AFLLadder
	}{true, ladder})
}

// ListBets returns tracked bets, newest first.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != store.BetStatusActive && status != store.BetStatusCompleted {
		respondError(w, http.StatusBadRequest, "Invalid status (use active or completed)", nil)
		return
	}
	userID := r.URL.Query().Get("user_id")
	limit := queryInt(r, "limit", 0)

	bets, err := h.betService.List(r.Context(), status, userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list bets", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bets":    bets,
		"count":   len(bets),
	})
}

// GetBet returns a bet with its legs.
func (h *Handler) GetBet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	betID := vars["betID"]

	bet, err := h.betService.Get(r.Context(), betID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Bet not found", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bet":     bet,
	})
}

// ResolveBets runs one settlement pass. Guarded by CRON_SECRET when set
// so only the scheduler's cron can trigger it remotely.
func (h *Handler) ResolveBets(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret != "" && r.URL.Query().Get("secret") != h.cronSecret {
		respondError(w, http.StatusUnauthorized, "Invalid secret", nil)
		return
	}

	summary, err := h.betService.Resolve(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Settlement pass failed", err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*settlement.Summary
	}{true, summary})
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	return r.URL.Query().Get(key) == "true"
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
