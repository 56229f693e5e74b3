package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case SessionsResult:
		o.printSessionsResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	TotalScore  int     `json:"totalScore"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
	LastLoginAt *string `json:"lastLoginAt"`
}

// LeaderboardEntry is one ranked leaderboard row
type LeaderboardEntry struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	TotalScore int     `json:"totalScore"`
	Games      int     `json:"games"`
	LastLogin  *string `json:"lastLogin"`
}

// Leaderboard wraps the ranked rows
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// SessionsResult holds the active session count
type SessionsResult struct {
	Count int `json:"count"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (o *Output) printPlayer(p Player) {
	activeStr := "banned"
	if p.IsActive {
		activeStr = "active"
	}
	fmt.Printf("Player: %s (%s)\n", p.Username, p.ID)
	fmt.Printf("Email: %s\n", p.Email)
	fmt.Printf("Total Score: %d\n", p.TotalScore)
	fmt.Printf("Status: %s\n", activeStr)
	if p.LastLoginAt != nil {
		fmt.Printf("Last Login: %s\n", *p.LastLoginAt)
	}
}

func (o *Output) printPlayers(players []Player) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		status := ""
		if !p.IsActive {
			status = " [banned]"
		}
		fmt.Printf("  - %s (%s) - %d points%s\n", p.Username, p.ID, p.TotalScore, status)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	fmt.Println("Leaderboard:")
	for i, e := range l.Entries {
		fmt.Printf("  %2d. %s - %d points (%d games)\n", i+1, e.PlayerName, e.TotalScore, e.Games)
	}
}

func (o *Output) printSessionsResult(s SessionsResult) {
	fmt.Printf("Active sessions: %d\n", s.Count)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
