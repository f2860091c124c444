package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/refdata"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

var (
	dataFile     string
	holding      []string
	outputFormat string
	withAlts     bool
	minLevel     string
	altLimit     int
)

var assessCmd = &cobra.Command{
	Use:   "assess [product]",
	Short: "Assess products from a reference file",
	Long: `Assess one product, or every product, of a reference data file against
the restrictions given with --hold. No database is needed.

A held restriction is written as "Name=severity"; the severity defaults
to moderate.

Examples:
  safetyctl assess --data reference.yaml --hold Vegan
  safetyctl assess --data reference.yaml --hold "Celiac Disease=severe" --alternatives 0001
  safetyctl assess --data reference.yaml --hold Vegan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&dataFile, "data", "d", "", "reference data file (required)")
	assessCmd.Flags().StringArrayVar(&holding, "hold", nil, "restriction held, as Name=severity (repeatable)")
	assessCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	assessCmd.Flags().BoolVarP(&withAlts, "alternatives", "a", false, "rank safer alternatives from the same file")
	assessCmd.Flags().StringVar(&minLevel, "min-level", safety.Caution.String(), "worst level an alternative may have")
	assessCmd.Flags().IntVar(&altLimit, "limit", safety.DefaultAlternativeLimit, "maximum alternatives per product")
	_ = assessCmd.MarkFlagRequired("data")
}

func runAssess(cmd *cobra.Command, args []string) error {
	f, err := os.Open(dataFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dataFile, err)
	}
	defer f.Close()

	doc, err := refdata.Decode(f)
	if err != nil {
		return err
	}

	opts := evalOptions{format: outputFormat, alternatives: withAlts, limit: altLimit}
	if len(args) > 0 {
		opts.product = args[0]
	}
	if opts.minimum, err = safety.ParseRiskLevel(minLevel); err != nil {
		return err
	}
	log.Debug("assessing reference file", "file", dataFile, "held", len(holding))
	return evaluate(cmd.OutOrStdout(), doc, holding, opts)
}

type evalOptions struct {
	product      string
	format       string
	alternatives bool
	minimum      safety.RiskLevel
	limit        int
}

type evalResult struct {
	Product      *safety.Product          `json:"product"`
	Assessment   *safety.SafetyAssessment `json:"assessment"`
	Alternatives []safety.Alternative     `json:"alternatives,omitempty"`
}

func evaluate(w io.Writer, doc *refdata.Document, held []string, opts evalOptions) error {
	off, err := doc.Offline()
	if err != nil {
		return err
	}
	restrictions, err := off.Holding(held)
	if err != nil {
		return err
	}

	products := off.Products
	if opts.product != "" {
		p, ok := off.Product(opts.product)
		if !ok {
			return fmt.Errorf("product %q not found in reference data", opts.product)
		}
		products = []*safety.Product{p}
	}

	aggregator := safety.NewAggregator(off.Table)
	ranker := safety.NewRanker(aggregator)
	results := make([]evalResult, 0, len(products))
	for _, p := range products {
		a, err := aggregator.Assess(p, restrictions)
		if err != nil {
			return err
		}
		res := evalResult{Product: p, Assessment: a}
		if opts.alternatives {
			res.Alternatives, err = ranker.Rank(p, off.Products, restrictions,
				safety.WithMinimumLevel(opts.minimum), safety.WithLimit(opts.limit))
			if err != nil {
				return err
			}
		}
		results = append(results, res)
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "", "cli":
		for _, r := range results {
			printResult(w, r)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}
}

func printResult(w io.Writer, r evalResult) {
	a := r.Assessment
	fmt.Fprintf(w, "%s: %s (confidence %d%%)\n", r.Product.Name, strings.ToUpper(a.OverallSafetyLevel.String()), a.ConfidenceScore)
	fmt.Fprintf(w, "  ingredients: %d safe, %d warning, %d danger\n",
		a.SafeIngredientsCount, a.WarningIngredientsCount, a.DangerousIngredientsCount)
	for _, f := range a.RiskFactors {
		marker := ""
		if f.LifeThreatening {
			marker = " LIFE-THREATENING"
		}
		fmt.Fprintf(w, "  ! %s: %s for %s%s\n", f.IngredientName, f.Level, strings.Join(f.RestrictionNames, ", "), marker)
	}
	for _, alt := range r.Alternatives {
		fmt.Fprintf(w, "  -> %s [%s, match %.0f] %s\n", alt.Product.Name, alt.Assessment.OverallSafetyLevel,
			alt.MatchScore, strings.Join(alt.Reasons, "; "))
	}
}
