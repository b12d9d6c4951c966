package cli

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/spf13/cobra"
)

const demoCollection rdf.CollectionName = "demo"

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Load sample data and run a few queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(func(s store.Store) error {
				return runDemo(cmd, s)
			})
		},
	}
}

func runDemo(cmd *cobra.Command, s store.Store) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintln(out, "=== Ligature Demo ===")
	fmt.Fprintln(out)

	name := rdf.MustPredicate("name")
	age := rdf.MustPredicate("age")
	knows := rdf.MustPredicate("knows")

	// Insert sample data
	fmt.Fprintln(out, "Inserting sample data...")
	var people []rdf.Entity
	err := store.Write(ctx, s, func(tx store.WriteTx) error {
		if err := tx.DeleteCollection(demoCollection); err != nil {
			return err
		}

		graph, err := tx.NewEntity(demoCollection)
		if err != nil {
			return err
		}
		for range 3 {
			e, err := tx.NewEntity(demoCollection)
			if err != nil {
				return err
			}
			people = append(people, e)
		}
		alice, bob, carol := people[0], people[1], people[2]
		greeting, err := rdf.NewLangLiteral("bonjour", "fr")
		if err != nil {
			return err
		}

		statements := []rdf.Statement{
			rdf.NewStatement(alice, name, rdf.StringLiteral("Alice"), graph),
			rdf.NewStatement(alice, age, rdf.LongLiteral(30), graph),
			rdf.NewStatement(alice, knows, bob, graph),
			rdf.NewStatement(alice, rdf.MustPredicate("greeting"), greeting, graph),

			rdf.NewStatement(bob, name, rdf.StringLiteral("Bob"), graph),
			rdf.NewStatement(bob, age, rdf.LongLiteral(25), graph),
			rdf.NewStatement(bob, knows, carol, graph),

			rdf.NewStatement(carol, name, rdf.StringLiteral("Carol"), graph),
			rdf.NewStatement(carol, age, rdf.LongLiteral(28), graph),
			rdf.NewStatement(carol, rdf.MustPredicate("height"), rdf.DoubleLiteral(1.68), graph),
		}
		for _, statement := range statements {
			if err := tx.AddStatement(demoCollection, statement); err != nil {
				return err
			}
			fmt.Fprintf(out, "  + %s\n", statement)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert sample data: %w", err)
	}

	_, err = store.Compute(ctx, s, func(tx store.ReadTx) (struct{}, error) {
		count, err := tx.CountStatements(demoCollection)
		if err != nil {
			return struct{}{}, err
		}
		fmt.Fprintf(out, "\nTotal statements stored: %d\n", count)

		fmt.Fprintln(out, "\n=== Who does Alice know? ===")
		it, err := tx.MatchStatements(demoCollection, store.Pattern{Subject: &people[0], Predicate: &knows})
		if err != nil {
			return struct{}{}, err
		}
		if err := printStatements(out, it); err != nil {
			return struct{}{}, err
		}

		fmt.Fprintln(out, "\n=== Ages in [26, 31) ===")
		it, err = tx.MatchStatementsRange(demoCollection, store.RangePattern{
			Predicate: &age,
			Range:     rdf.LongLiteralRange{From: 26, To: 31},
		})
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, printStatements(out, it)
	})
	return err
}

func printStatements(w io.Writer, it store.StatementIterator) error {
	statements, err := store.Collect(it)
	if err != nil {
		return err
	}
	for _, s := range statements {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return nil
}
