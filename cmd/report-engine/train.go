package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.yaml.in/yaml/v3"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Rebuild the style profile from the example-report corpus",
	Long: `Train analyzes every example report in the corpus and rebuilds the style
profile: section ordering, heading phrasing, sentence and paragraph rhythm,
and characteristic vocabulary, bucketed by audience and length. Recent
examples weigh more than old ones. The new profile replaces the active one
atomically; generations already in flight keep the profile they started with.

With --corpus-dir, .txt files from that directory are ingested into the
corpus store first. Report type is inferred from filename tokens such as
"parent" or "short"; unrecognized files default to specialist-full.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg := loadConfig()
		if dir, _ := cmd.Flags().GetString("corpus-dir"); dir != "" {
			cfg.Style.CorpusDir = dir
		}

		eng, st, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if cfg.Style.CorpusDir != "" {
			n, err := st.Corpus().ImportDir(ctx, cfg.Style.CorpusDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Imported %d example reports from %s\n", n, cfg.Style.CorpusDir)
		}

		summary, err := eng.Train(ctx)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	trainCmd.Flags().String("corpus-dir", "", "directory of .txt example reports to ingest before training")

	rootCmd.AddCommand(trainCmd)
}
