package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/export"
	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

var (
	domainHint string
	maxSources int
	maxCycles  int
	exportPath string
	llmName    string
	llmModel   string
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Run an autonomous research session to completion",
	Long: `Research starts a session for the given query and runs research cycles
until saturation: sources are selected per topic domain, queried in
parallel, and extracted claims are cross-checked for contradictions and
scored for confidence.

Interrupting with Ctrl-C requests a cooperative stop: the session
finishes its current cycle and synthesizes a report from what it has.

Example:
  scout research "history of the laksa dish"
  scout research "CRISPR off-target effects" --domain medical --export report.json
  scout research "acme corp market share" --llm openai --model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVar(&domainHint, "domain", "", "topic domain (detected from the query when empty)")
	researchCmd.Flags().IntVar(&maxSources, "max-sources", 0, "maximum sources per cycle (0 = configured default)")
	researchCmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "cycle budget (0 = configured default)")
	researchCmd.Flags().StringVar(&exportPath, "export", "", "write the report to this path (.json or .md)")
	researchCmd.Flags().StringVar(&llmName, "llm", "", "LLM provider for synthesis (openai)")
	researchCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name")
}

func runResearch(cmd *cobra.Command, args []string) error {
	applyLLMFlags()

	app, err := newApp()
	if err != nil {
		return err
	}
	if maxCycles > 0 {
		app.Config.Research.MaxCycles = maxCycles
	}

	query := strings.Join(args, " ")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := app.Registry.Start(ctx, query, domainHint, maxSources)
	fmt.Printf("Session %s started\n", sessionID)

	// Ctrl-C requests a cooperative stop at the next evaluate boundary
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Stop requested; finishing current cycle...")
		app.Registry.RequestStop(sessionID)
	}()

	report, err := app.Registry.Wait(sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("\nCompleted after %d cycle(s): %s\n", report.Cycles, report.StopReason)
	fmt.Printf("Facts: %d, contradictions: %d, sources: %s\n\n",
		len(report.Facts), len(report.Contradictions), strings.Join(report.SourcesQueried, ", "))
	fmt.Println(report.SummaryMD)

	if exportPath != "" {
		if err := exportReport(report, exportPath); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote report: %s\n", exportPath)
	}

	return nil
}

// applyLLMFlags pushes LLM CLI flags into viper so they override config
func applyLLMFlags() {
	if llmName != "" {
		viper.Set("llm.provider", llmName)
	}
	if llmModel != "" {
		viper.Set("llm.model", llmModel)
	}
}

// exportReport writes the finished report to the requested path
func exportReport(report *model.Report, path string) error {
	return export.NewFileExporter().Export(report, path)
}
