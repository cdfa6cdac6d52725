package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newBundlesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bundles",
		Short: "List fitted bundles, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No bundles fitted yet; run `compliancelens fit`")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tCREATED\tRECORDS\tACCURACY")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\n", s.Version, s.CreatedAt.Format(time.RFC3339), s.Records, s.Accuracy*100)
			}
			return w.Flush()
		},
	}
}
