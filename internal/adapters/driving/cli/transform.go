package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/logger"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

var (
	transformSource string
	transformOutput string
)

var transformCmd = &cobra.Command{
	Use:   "transform [input.json]",
	Short: "Normalise raw supplier records into the canonical schema",
	Long: `Reads a JSON array of raw product records and emits canonical
products with uniform keys. Field names are resolved through per-source
alias tables; prices are parsed into numeric pack units.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVarP(&transformSource, "source", "s", "", "source hint for alias resolution (one of: "+sourceList()+")")
	transformCmd.Flags().StringVarP(&transformOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(transformCmd)
}

func sourceList() string {
	list := ""
	for i, s := range normalisers.Sources() {
		if i > 0 {
			list += ", "
		}
		list += s
	}
	return list
}

func runTransform(cmd *cobra.Command, args []string) error {
	if normaliser == nil {
		return errors.New("normaliser not configured")
	}

	records, err := readProductRecords(args[0])
	if err != nil {
		return err
	}

	products := make([]domain.CanonicalProduct, 0, len(records))
	for i := range records {
		p := normaliser.Normalise(records[i], transformSource)
		if p.Name == "" {
			logger.Warn("Record %d has no resolvable name, keeping anyway", i)
		}
		products = append(products, p)
	}

	logger.Info("Normalised %d records (source hint: %q)", len(products), transformSource)

	if err := writeJSON(cmd, transformOutput, products); err != nil {
		return err
	}
	if transformOutput != "" {
		cmd.Printf("Wrote %d canonical products to %s\n", len(products), transformOutput)
	}
	return nil
}
