package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/services"
)

type MatchHandler struct {
	matchService       services.MatchService
	progressionService services.ProgressionService
}

func NewMatchHandler(ms services.MatchService, ps services.ProgressionService) *MatchHandler {
	return &MatchHandler{
		matchService:       ms,
		progressionService: ps,
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/matches
// with optional round and status filters.
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	var round *int
	if roundStr := query.Get("round"); roundStr != "" {
		if v, err := strconv.Atoi(roundStr); err == nil && v > 0 {
			round = &v
		} else {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
	}
	var status *models.MatchStatus
	if statusStr := query.Get("status"); statusStr != "" {
		s := models.MatchStatus(statusStr)
		status = &s
	}

	matches, err := h.matchService.ListTournamentMatches(r.Context(), tournamentID, round, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /matches/{matchID}.
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /matches/{matchID}/start.
func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.StartMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler handles POST /matches/{matchID}/complete. The game session
// reports the terminal result here; delivery is at-least-once, so a repeated
// report of the same result is acknowledged without re-advancing the bracket.
func (h *MatchHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var event services.MatchCompletionEvent
	if err := readJSON(w, r, &event); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	event.MatchID = id

	if err := h.progressionService.HandleMatchCompleted(r.Context(), event); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "accepted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
