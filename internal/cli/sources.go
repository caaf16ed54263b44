package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/verify"
)

var sourcesDomain string

// sourcesCmd inspects the learned effectiveness ledger
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show learned source effectiveness per domain",
	Long: `Sources lists the effectiveness ledger: the per-(source, domain) scores
learned from past sessions via exponential moving average, alongside
each source's static credibility profile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		records, err := app.Effectiveness.All(sourcesDomain)
		if err != nil {
			return fmt.Errorf("read ledger: %w", err)
		}

		sort.Slice(records, func(i, j int) bool {
			if records[i].Domain != records[j].Domain {
				return records[i].Domain < records[j].Domain
			}
			return records[i].Score > records[j].Score
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOMAIN\tSOURCE\tSCORE\tQUERIES\tSUCCESSES\tCREDIBILITY\tPEER-REVIEWED")
		for _, rec := range records {
			quality := verify.SourceQuality(rec.Source)
			fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\t%d\t%.2f\t%v\n",
				rec.Domain, rec.Source, rec.Score, rec.Queries, rec.Successes,
				quality.Credibility, quality.PeerReviewed)
		}
		if len(records) == 0 {
			fmt.Fprintln(w, "(no history yet)")
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().StringVar(&sourcesDomain, "domain", "", "filter by topic domain")
}
