package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file>",
		Short: "Add the statements of a text form file to a collection",
		Long: `Add every statement of a text form file to a collection in one
write transaction. Use - to read from standard input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, rdf.CollectionName(args[0]), args[1])
		},
	}
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, collection rdf.CollectionName, path string) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	statements, err := rdf.ParseStatements(r)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return rootOpts.withStore(func(s store.Store) error {
		err := store.Write(cmd.Context(), s, func(tx store.WriteTx) error {
			if err := tx.CreateCollection(collection); err != nil {
				return err
			}
			for _, statement := range statements {
				if err := tx.AddStatement(collection, statement); err != nil {
					return fmt.Errorf("add %s: %w", statement, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		rootOpts.logger.Info("import completed",
			zap.String("collection", string(collection)),
			zap.Int("statements", len(statements)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d statements into %s\n", len(statements), collection)
		return nil
	})
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <collection>",
		Short: "Write every statement of a collection in text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := rdf.CollectionName(args[0])
			return rootOpts.withStore(func(s store.Store) error {
				statements, err := store.Compute(cmd.Context(), s, func(tx store.ReadTx) ([]rdf.Statement, error) {
					it, err := tx.AllStatements(collection)
					if err != nil {
						return nil, err
					}
					return store.Collect(it)
				})
				if err != nil {
					return err
				}
				return rdf.WriteStatements(cmd.OutOrStdout(), statements)
			})
		},
	}
}
