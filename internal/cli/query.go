package cli

import (
	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players by total score",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []LeaderboardEntry
			if err := requestHub("GetLeaderboard", "Leaderboard", &entries); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(Leaderboard{Entries: entries})
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "Show the active session count",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionsResult
			if err := requestHub("GetActiveSessions", "ActiveSessions", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
