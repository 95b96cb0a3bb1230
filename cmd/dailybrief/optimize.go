package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/longregen/dailybrief/internal/adapters/id"
	"github.com/longregen/dailybrief/internal/application/services"
	"github.com/longregen/dailybrief/internal/application/usecases"
	"github.com/longregen/dailybrief/internal/digest"
	"github.com/longregen/dailybrief/internal/domain/models"
)

// optimizeCmd runs the prompt optimization loop
func optimizeCmd() *cobra.Command {
	var maxEvaluations, batchSize int
	var seedFile, outFile string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize the TV guide prompt",
		Long: `Evaluate the TV guide prompt and model-proposed variants of it, keeping
the best-scoring prompt as parent for the next round.

Each evaluation costs two model calls (content and scoring); each round of
variants costs one more. Prompts, responses and reports are written to the
configured audit sinks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-evaluations") {
				maxEvaluations = cfg.Optimizer.MaxEvaluations
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Optimizer.BatchSize
			}
			if seedFile == "" {
				seedFile = cfg.Optimizer.SeedFile
			}

			dates := digest.NewDates(time.Now(), cfg.TimeLocation())
			seed := digest.TVGuidePrompt(dates)
			if seedFile != "" {
				var err error
				if seed, err = readPromptFile(seedFile); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			ids := id.New()
			sink, location := openAuditSink(ctx, ids)
			defer sink.Close()

			rubric := services.TVGuideRubric()
			log := appLog.With("component", "optimizer")
			uc := usecases.NewRunOptimization(
				services.NewEvaluator(generator, sink, rubric, log),
				services.NewVariantGenerator(generator, sink, rubric, log),
				sink,
				ids,
				log,
				usecases.OptimizationConfig{
					SeedPrompt:  seed,
					BatchSize:   batchSize,
					TargetDate:  dates.FullDate(),
					LogLocation: location,
				},
			)

			report, err := uc.Execute(ctx, maxEvaluations)
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			printRanking(report)
			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(report.BestPrompt), 0o644); err != nil {
					return fmt.Errorf("failed to write best prompt: %w", err)
				}
				fmt.Printf("\nBest prompt written to %s\n", outFile)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxEvaluations, "max-evaluations", "n", 12, "Maximum number of candidate evaluations")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", usecases.DefaultBatchSize, "Candidates evaluated concurrently")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "File holding the seed prompt (default: built-in TV guide prompt)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the best prompt to this file (usable with 'tv --prompt-file')")

	return cmd
}

func printRanking(r *models.OptimizationReport) {
	fmt.Printf("Run %s: %d evaluations, stopped: %s\n\n", r.RunID, r.EvaluationsRun, r.StopReason)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tGEN\tOVERALL\tFACT\tQTY\tGENERIC\tNOTE")
	fmt.Fprintln(w, "----\t--\t---\t-------\t----\t---\t-------\t----")
	for _, e := range r.Entries {
		note := ""
		if e.Fallback {
			note = "fallback"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
			e.Rank, e.ID, e.Generation, e.Overall, e.Factuality, e.Quantity, e.Genericity, note)
	}
	w.Flush()

	fmt.Printf("\nImprovement over original: %s\n", services.FormatImprovement(r.Improvement))
	if r.SummaryLocation != "" {
		fmt.Printf("Summary saved to: %s\n", r.SummaryLocation)
	}
	if preview := truncate(strings.TrimSpace(r.BestPrompt), 300); preview != "" {
		fmt.Printf("\nBest prompt (%s):\n%s\n", r.Best().ID, preview)
	}
}
