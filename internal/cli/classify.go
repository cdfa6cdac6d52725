package cli

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/compliancelens/backend/internal/domain"
)

// classifyLine is one JSON line of classify output
type classifyLine struct {
	Index       int                     `json:"index"`
	RecordID    string                  `json:"recordId"`
	Status      domain.ComplianceStatus `json:"complianceStatus,omitempty"`
	Probability *float64                `json:"probability,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

func newClassifyCommand(a *app) *cobra.Command {
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every record of a dataset and print one JSON line per record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			rt, err := buildRuntime(ctx, a.cfg, store, nil)
			if err != nil {
				return err
			}

			records, err := loadRecords(ctx, datasetConfig(a.cfg, datasetPath))
			if err != nil {
				return err
			}

			items, err := rt.compliance.ClassifyBatch(ctx, records)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, item := range items {
				line := classifyLine{Index: item.Index, RecordID: item.RecordID}
				if item.OK() {
					result := item.Classification.Result
					line.Status = result.Status
					line.Probability = &result.Probability
				} else {
					line.Error = item.Err.Error()
					failed++
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}

			log.Info().Int("records", len(items)).Int("failed", failed).Msg("Dataset classified")
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "CSV file to classify (overrides the configured dataset)")
	return cmd
}
