package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/relay/core/taskgraph"
)

var (
	askSession  string
	askJSON     bool
	askProgress bool
	askTimeout  time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question",
	Long: `Ask a question against the indexed documents and record store.

Examples:
  relay ask "What is the leave policy?"
  relay ask "Show me all pending leave requests"
  relay ask --session alice "And how many days do I have left?"
  relay ask --json "Explain the attendance rules" | jq '.response'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session id for follow-up questions")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output the full response as JSON")
	askCmd.Flags().BoolVar(&askProgress, "progress", false, "Print per-task progress to stderr")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "Overall request timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	application, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	if askProgress {
		unsubscribe := application.orchestrator.Executor().Subscribe(printProgress)
		defer unsubscribe()
	}

	resp := application.orchestrator.Run(ctx, query, askSession)

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(out, resp.Response)
	fmt.Fprintf(out, "\n[session %s, confidence %s", resp.SessionID, resp.Confidence)
	if resp.Fallback {
		fmt.Fprint(out, ", fallback")
	}
	fmt.Fprintln(out, "]")
	return nil
}

func printProgress(p taskgraph.Progress) {
	if p.CurrentTask == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s (%d/%d done)\n",
		p.Status, p.CurrentTask, p.CompletedTasks, p.TotalTasks)
}
