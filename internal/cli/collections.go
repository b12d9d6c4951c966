package cli

import (
	"fmt"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(s store.Store) error {
				names, err := store.Compute(cmd.Context(), s, func(tx store.ReadTx) ([]rdf.CollectionName, error) {
					it, err := tx.CollectionsPrefix(rdf.CollectionName(prefix))
					if err != nil {
						return nil, err
					}
					return store.CollectCollections(it)
				})
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only list collections starting with prefix")
	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection>",
		Short: "Count the statements of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(s store.Store) error {
				count, err := store.Compute(cmd.Context(), s, func(tx store.ReadTx) (int64, error) {
					return tx.CountStatements(rdf.CollectionName(args[0]))
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}
}
