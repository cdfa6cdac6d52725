package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/compliancelens/backend/internal/features"
	"github.com/compliancelens/backend/internal/usecase"
)

func newFitCommand(a *app) *cobra.Command {
	var (
		datasetPath string
		fitCfg      usecase.FitConfig
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit binners, category encoding and the compliance model from a labelled dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			records, err := loadRecords(ctx, datasetConfig(a.cfg, datasetPath))
			if err != nil {
				return err
			}

			store, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			training := usecase.NewTrainingService(store, features.NewExpiryAnalyzer(nil))
			bundle, err := training.Fit(ctx, records, fitCfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := bundle.Report
			fmt.Fprintf(out, "Bundle %s\n", bundle.Version)
			fmt.Fprintf(out, "Records: %d (train %d, test %d, seed %d)\n",
				report.Records, report.TrainSize, report.TestSize, report.Seed)
			fmt.Fprintf(out, "Test accuracy: %.1f%%\n", report.Accuracy*100)
			fmt.Fprintf(out, "Categories: %v\n\n", bundle.Features.Categories.Classes())

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FEATURE\tIMPORTANCE")
			for _, imp := range report.Importances {
				fmt.Fprintf(w, "%s\t%.3f\n", imp.Feature, imp.Importance)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "CSV file to fit on (overrides the configured dataset)")
	cmd.Flags().Int64Var(&fitCfg.Seed, "seed", 42, "Shuffle seed for the train/test split")
	cmd.Flags().Float64Var(&fitCfg.TestFraction, "test-fraction", 0.2, "Share of records held out for evaluation")
	cmd.Flags().IntVar(&fitCfg.Train.Epochs, "epochs", 0, "Gradient descent epochs (0 uses the default)")
	cmd.Flags().Float64Var(&fitCfg.Train.LearningRate, "learning-rate", 0, "Gradient descent step size (0 uses the default)")
	cmd.Flags().Float64Var(&fitCfg.Train.L2, "l2", 0, "L2 regularization strength")
	return cmd
}
