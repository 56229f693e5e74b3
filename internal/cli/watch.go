package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var role string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live hub events",
		Long: `Connect to the hub as a dashboard and stream events in real-time.

Events include:
  - ScoreUpdate: A player's score changed
  - CheatAlert: A validator reported suspicious movement
  - LeaderboardUpdate: Public score broadcast (role=player)
  - ValidateMove: Movement awaiting validation (role=validator)

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(role, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&role, "role", "dashboard", "Connection role: dashboard, player, validator")

	return cmd
}

// HubEvent represents a received hub event
type HubEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func streamEvents(role string, jsonOutput bool) error {
	conn, err := dialHub(role)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	if !jsonOutput {
		fmt.Printf("Connected as %s\n", role)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			// A local close from the interrupt handler also lands here
			if strings.Contains(err.Error(), "use of closed network connection") {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		printEvent(env, jsonOutput)
	}
}

func printEvent(env wsEnvelope, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := HubEvent{
			Time:  now,
			Event: env.Event,
			Data:  env.Data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
	} else {
		timestamp := now.Format("2006-01-02 15:04:05")
		// Truncate data if it's too long for display
		displayData := string(env.Data)
		if len(displayData) > 100 {
			displayData = displayData[:100] + "..."
		}
		displayData = strings.ReplaceAll(displayData, "\n", " ")
		fmt.Printf("[%s] %s: %s\n", timestamp, env.Event, displayData)
	}
}
