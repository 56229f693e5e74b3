package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gamehub/internal/dependencies/random"
	"gamehub/internal/hub"
	"gamehub/internal/model"
	"gamehub/internal/services/anticheat"
	"gamehub/internal/services/moverelay"
	"gamehub/internal/services/query"
	"gamehub/internal/services/roster"
	"gamehub/internal/services/score"
)

const connIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Options configures the websocket endpoint
type Options struct {
	// AllowedOrigins is matched against the Origin header on upgrade; empty
	// allows any origin.
	AllowedOrigins []string
	// MaxMessageBytes bounds inbound frames (and therefore opaque moveData)
	MaxMessageBytes int64
	// ConnectRate and ConnectBurst throttle upgrade attempts
	ConnectRate  float64
	ConnectBurst int
	// LeaderboardSize is the number of rows returned for GetLeaderboard
	LeaderboardSize int
}

// DefaultOptions returns the stock transport settings
func DefaultOptions() Options {
	return Options{
		MaxMessageBytes: 16 * 1024,
		ConnectRate:     20,
		ConnectBurst:    40,
		LeaderboardSize: 10,
	}
}

// Handler upgrades inbound websocket connections, classifies them by role,
// and dispatches their events to the hub services. Each connection's events
// are processed one at a time in arrival order by its read loop; connections
// run concurrently with each other.
type Handler struct {
	registry  *hub.Registry
	router    *hub.Router
	scores    *score.Service
	moves     *moverelay.Service
	anticheat *anticheat.Service
	queries   *query.Service
	roster    *roster.Service
	random    random.Random

	opts     Options
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// HandlerConfig wires the handler's dependencies
type HandlerConfig struct {
	Registry  *hub.Registry
	Router    *hub.Router
	Scores    *score.Service
	Moves     *moverelay.Service
	AntiCheat *anticheat.Service
	Queries   *query.Service
	Roster    *roster.Service
	Random    random.Random
	Options   Options
	Logger    *slog.Logger
}

// NewHandler creates the websocket endpoint handler
func NewHandler(cfg HandlerConfig) *Handler {
	opts := cfg.Options
	if opts.MaxMessageBytes == 0 {
		opts = DefaultOptions()
	}

	h := &Handler{
		registry:  cfg.Registry,
		router:    cfg.Router,
		scores:    cfg.Scores,
		moves:     cfg.Moves,
		anticheat: cfg.AntiCheat,
		queries:   cfg.Queries,
		roster:    cfg.Roster,
		random:    cfg.Random,
		opts:      opts,
		limiter:   rate.NewLimiter(rate.Limit(opts.ConnectRate), opts.ConnectBurst),
		logger:    cfg.Logger.With(slog.String("component", "ws")),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if h.allowedOrigin(r.Header.Get("Origin")) {
				return true
			}
			connectionsRejected.WithLabelValues("origin").Inc()
			h.logger.Warn("connection rejected by origin check",
				slog.String("origin", r.Header.Get("Origin")),
			)
			return false
		},
	}

	// Router deliveries feed the transport's metrics
	cfg.Router.SetDeliveryObserver(ObserveDelivery)

	return h
}

func (h *Handler) allowedOrigin(origin string) bool {
	if len(h.opts.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// ServeHTTP handles GET /ws?clientType=...&playerId=...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		connectionsRejected.WithLabelValues("rate_limit").Inc()
		http.Error(w, "Too many connection attempts", http.StatusTooManyRequests)
		return
	}

	role := model.ParseRole(r.URL.Query().Get("clientType"))
	playerID := model.PlayerID(r.URL.Query().Get("playerId"))

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		connectionsRejected.WithLabelValues("upgrade").Inc()
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	sock.SetReadLimit(h.opts.MaxMessageBytes)

	id := model.ConnectionID("c_" + h.random.String(16, connIDAlphabet))
	conn := newConn(id, sock, h.logger)

	h.registry.Register(conn, role, playerID)
	for _, group := range hub.DefaultGroups(role, playerID) {
		h.router.Join(id, group)
	}
	if role == model.RolePlayer {
		h.roster.RecordLogin(r.Context(), playerID)
	}
	connectionsActive.WithLabelValues(string(role)).Inc()

	h.logger.Info("client connected",
		slog.String("connection_id", string(id)),
		slog.String("role", string(role)),
		slog.String("player_id", string(playerID)),
	)

	go conn.writePump()
	h.readLoop(conn, role, playerID)

	// Disconnect: stop future group delivery; in-flight work already
	// accepted above is unaffected
	h.router.LeaveAll(id)
	h.registry.Unregister(id)
	_ = conn.Close()
	connectionsActive.WithLabelValues(string(role)).Dec()

	h.logger.Info("client disconnected",
		slog.String("connection_id", string(id)),
		slog.String("role", string(role)),
	)
}

// readLoop processes inbound events strictly in arrival order for this
// connection. It returns when the socket closes or errors.
func (h *Handler) readLoop(conn *Conn, role model.Role, playerID model.PlayerID) {
	_ = conn.sock.SetReadDeadline(time.Now().Add(pongWait))
	conn.sock.SetPongHandler(func(string) error {
		return conn.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read error",
					slog.String("connection_id", string(conn.id)),
					slog.Any("error", err),
				)
			}
			return
		}
		h.dispatch(conn, role, playerID, frame)
	}
}
