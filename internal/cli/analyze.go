package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/cache"
	"github.com/nutrigrade/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
	"github.com/nutrigrade/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	*options
	barcode   string
	reference string
	dedupe    bool
	jsonOut   bool
	timeout   time.Duration
}

func newAnalyzeCmd(global *options) *cobra.Command {
	opts := &analyzeOptions{options: global}

	cmd := &cobra.Command{
		Use:   "analyze [ingredients text]",
		Short: "Analyze an ingredient list or a barcode for additive compliance",
		Long: `Analyze extracts additive codes from ingredients text and reports the
status of each one together with an overall compliance verdict.

Use "-" as the text to read it from standard input.

Example:
  nutrigrade analyze "Water, Sugar, INS 211 (Sodium benzoate)"
  nutrigrade analyze --barcode 8901063012349 --json
  cat label.txt | nutrigrade analyze - --dedupe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.barcode, "barcode", "", "look the product up on Open Food Facts")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "reference table path (overrides config)")
	cmd.Flags().BoolVar(&opts.dedupe, "dedupe", false, "report each additive code once")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout for barcode lookups")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read ingredients from stdin: %w", err)
		}
		text = string(data)
	}

	path := cfg.Reference.Path
	if opts.reference != "" {
		path = opts.reference
	}
	table, err := reference.Load(path)
	if err != nil {
		return err
	}

	var resolver domain.ProductResolver
	if opts.barcode != "" {
		client := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.OpenFoodFacts.Timeout)
		client.SetDebug(opts.verbose)
		resolver = client
	}

	service := usecase.NewAnalysisService(
		table,
		resolver,
		cache.NewMemoryCache(cfg.Cache.TTL, 0),
		usecase.AnalysisServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			Deduplicate:        opts.dedupe || cfg.Analysis.Deduplicate,
			EnableDebugLogging: opts.verbose,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	result, err := service.Analyze(ctx, &domain.AnalyzeRequest{
		Barcode:         opts.barcode,
		IngredientsText: text,
	})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(cmd.OutOrStdout(), result)
}

func printResult(out io.Writer, result *domain.AnalysisResult) error {
	if result.ProductName != "" {
		fmt.Fprintf(out, "Product: %s (%s)\n", result.ProductName, result.Barcode)
	}
	fmt.Fprintf(out, "Source:  %s\n", result.Source)
	fmt.Fprintf(out, "Verdict: %s\n\n", result.ProductCompliance)

	if len(result.Ingredients) == 0 {
		fmt.Fprintln(out, "No additive codes found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSTATUS\tNAME\tFOUND AS\tNOTES")
	for _, f := range result.Ingredients {
		name := f.Name
		if name == "" {
			name = f.Label
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.NormalizedINS, f.Status, orDash(name), f.Raw, constraints(f))
	}
	return w.Flush()
}

// constraints summarizes what a restricted finding is limited to
func constraints(f domain.IngredientFinding) string {
	var parts []string
	if f.MaxPPM != nil {
		parts = append(parts, fmt.Sprintf("max %g ppm", *f.MaxPPM))
	}
	if len(f.AllowedIn) > 0 {
		parts = append(parts, "only in "+strings.Join(f.AllowedIn, ", "))
	}
	if f.Notes != nil && *f.Notes != "" {
		parts = append(parts, *f.Notes)
	}
	return orDash(strings.Join(parts, "; "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
