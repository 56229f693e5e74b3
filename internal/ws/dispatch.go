package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gamehub/internal/model"
)

// Inbound request payloads

type sendScoreRequest struct {
	PlayerID   model.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
	Score      int            `json:"score"`
}

type sendMoveRequest struct {
	PlayerID model.PlayerID  `json:"playerId"`
	MoveData json.RawMessage `json:"moveData"`
}

type cheatDetectedRequest struct {
	PlayerID         model.PlayerID `json:"playerId"`
	CheatProbability float64        `json:"cheatProbability"`
	Confidence       string         `json:"confidence"`
	PatternVector    []byte         `json:"patternVector,omitempty"`
}

type activeSessionsResponse struct {
	Count int `json:"count"`
}

// dispatch routes one inbound frame to the matching service.
//
// Error propagation follows the hub's policy: caller-initiated actions
// surface recoverable errors back to the caller only, detection ingestion is
// logged with no notification, and malformed frames are skipped. Dispatch
// uses a background context so a disconnect never cancels work already
// accepted from the wire.
func (h *Handler) dispatch(conn *Conn, role model.Role, playerID model.PlayerID, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.logger.Warn("malformed frame",
			slog.String("connection_id", string(conn.id)),
			slog.Any("error", err),
		)
		return
	}

	eventsTotal.WithLabelValues(string(env.Event)).Inc()
	ctx := context.Background()

	switch env.Event {
	case model.EventSendScore:
		var req sendScoreRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.deliverError(conn, "invalid SendScore payload")
			return
		}
		if _, err := h.scores.Submit(ctx, req.PlayerID, req.PlayerName, req.Score); err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				h.deliverError(conn, "Player not found")
			} else {
				h.deliverError(conn, "Failed to send score")
			}
		}

	case model.EventSendMove:
		var req sendMoveRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.deliverError(conn, "invalid SendMove payload")
			return
		}
		h.moves.Relay(ctx, req.PlayerID, conn.id, req.MoveData)

	case model.EventCheatDetected:
		if role != model.RoleValidator {
			h.logger.Warn("cheat detection from non-validator ignored",
				slog.String("connection_id", string(conn.id)),
				slog.String("role", string(role)),
			)
			return
		}
		var req cheatDetectedRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.logger.Warn("invalid CheatDetected payload",
				slog.String("connection_id", string(conn.id)),
				slog.Any("error", err),
			)
			return
		}
		// No caller notification on failure; detection reports have no
		// originating human client
		_ = h.anticheat.Report(ctx, conn.id, req.PlayerID, req.CheatProbability, req.Confidence, req.PatternVector)

	case model.EventPing:
		_ = conn.Deliver(model.EventPong, "pong")

	case model.EventGetLeaderboard:
		entries, err := h.queries.TopPlayers(ctx, h.opts.LeaderboardSize)
		if err != nil {
			h.deliverError(conn, "Failed to load leaderboard")
			return
		}
		_ = conn.Deliver(model.EventLeaderboard, entries)

	case model.EventGetActiveSessions:
		count, err := h.queries.ActiveSessionCount(ctx)
		if err != nil {
			h.deliverError(conn, "Failed to count sessions")
			return
		}
		_ = conn.Deliver(model.EventActiveSessions, activeSessionsResponse{Count: count})

	default:
		h.logger.Warn("unknown event",
			slog.String("connection_id", string(conn.id)),
			slog.String("event", string(env.Event)),
		)
	}
}

func (h *Handler) deliverError(conn *Conn, message string) {
	_ = conn.Deliver(model.EventError, model.ErrorPayload{Message: message})
}
