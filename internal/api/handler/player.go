package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"gamehub/internal/api/apierr"
	"gamehub/internal/api/response"
	"gamehub/internal/model"
	"gamehub/internal/services/roster"
)

// PlayerHandler serves the read-only player listing and account creation
type PlayerHandler struct {
	roster *roster.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(roster *roster.Service) *PlayerHandler {
	return &PlayerHandler{roster: roster}
}

type createPlayerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type playerResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	TotalScore  int        `json:"totalScore"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func toPlayerResponse(p *model.Player) playerResponse {
	return playerResponse{
		ID:          string(p.ID),
		Username:    p.Username,
		Email:       p.Email,
		TotalScore:  p.TotalScore,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		LastLoginAt: p.LastLoginAt,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.roster.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerResponse(p))
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username, email and password are required"))
		return
	}

	player, err := h.roster.Create(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toPlayerResponse(player))
}
