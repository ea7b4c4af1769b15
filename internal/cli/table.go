package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
	"github.com/spf13/cobra"
)

func newTableCmd(global *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect additive reference tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a reference table file loads cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := reference.Load(args[0])
			if err != nil {
				return err
			}

			counts := map[domain.AdditiveStatus]int{}
			for _, r := range table.All() {
				counts[r.Status]++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d additives (%d permitted, %d restricted, %d banned)\n",
				args[0], table.Len(),
				counts[domain.StatusPermitted], counts[domain.StatusRestricted], counts[domain.StatusBanned])
			return nil
		},
	})

	var tablePath string
	lookupCmd := &cobra.Command{
		Use:   "lookup <code|name>",
		Short: "Print the reference entry for an additive code or name",
		Example: `  nutrigrade table lookup "INS 211"
  nutrigrade table lookup "Sodium benzoate"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tablePath
			if path == "" {
				cfg, err := global.loadConfig(cmd)
				if err != nil {
					return err
				}
				path = cfg.Reference.Path
			}

			table, err := reference.Load(path)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			record, ok := lookupRecord(table, query)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrAdditiveNotFound, query)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}
	lookupCmd.Flags().StringVar(&tablePath, "reference", "", "reference table path (overrides config)")
	cmd.AddCommand(lookupCmd)

	return cmd
}

// lookupRecord tries the query as a code first, then as an exact name
func lookupRecord(table *reference.Table, query string) (*domain.AdditiveRecord, bool) {
	if code, ok := domain.NormalizeCode(query); ok {
		if record, found := table.Lookup(code); found {
			return record, true
		}
	}
	return table.LookupByName(query)
}
