package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/relay/core/knowledge"
)

var (
	ingestPatterns []string
	ingestWatch    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index documents for retrieval",
	Long: `Index the documents under a directory into the knowledge index.

Examples:
  relay ingest
  relay ingest ./docs
  relay ingest --pattern "*.md" --pattern "*.rst" ./handbook
  relay ingest --watch ./docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringArrayVar(&ingestPatterns, "pattern", nil, "Filename glob to include (repeatable)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "Keep running and re-index files as they change")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	dir := cfg.Knowledge.DocsDir
	if len(args) > 0 {
		dir = args[0]
	}

	patterns := cfg.Knowledge.IncludePatterns
	if len(ingestPatterns) > 0 {
		patterns = ingestPatterns
	}

	index, err := knowledge.NewIndex(cfg.Knowledge.IndexPath, log)
	if err != nil {
		return fmt.Errorf("open knowledge index: %w", err)
	}
	defer index.Close()

	ingestor, err := knowledge.NewIngestor(index, patterns, log)
	if err != nil {
		return fmt.Errorf("create ingestor: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	count, err := ingestor.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents from %s in %s\n",
		count, dir, time.Since(start).Round(time.Millisecond))

	if !ingestWatch {
		return nil
	}

	watcher, err := knowledge.NewWatcher(ingestor, log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Watch(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (ctrl-c to stop)\n", dir)
	<-ctx.Done()
	return nil
}
