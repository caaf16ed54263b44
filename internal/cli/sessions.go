package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// sessionsCmd lists checkpointed sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List checkpointed research sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		ids, err := app.Sessions.List()
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No checkpointed sessions")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tPHASE\tCYCLE\tDOMAIN\tFACTS\tSTOP REASON")
		for _, id := range ids {
			state, ok, err := app.Sessions.Load(id)
			if err != nil || !ok {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
				state.SessionID, state.Phase, state.Cycle, state.Domain,
				len(state.Facts), state.StopReason)
		}
		return w.Flush()
	},
}

// resumeCmd continues an interrupted session from its last checkpoint
var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a checkpointed session from its last completed phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		sessionID := args[0]
		ctx := cmd.Context()
		if err := app.Registry.Resume(ctx, sessionID); err != nil {
			return err
		}

		report, err := app.Registry.Wait(sessionID)
		if err != nil {
			return err
		}

		fmt.Printf("Completed after %d cycle(s): %s\n\n", report.Cycles, report.StopReason)
		fmt.Println(report.SummaryMD)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(resumeCmd)
}
