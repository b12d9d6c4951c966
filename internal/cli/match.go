package cli

import (
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/spf13/cobra"
)

// MatchOptions holds the pattern flags of the match command.
type MatchOptions struct {
	Subject   string
	Predicate string
	Object    string
	Context   string

	RangeKind string // "long" | "double" | "string"
	From      string
	To        string
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{}

	cmd := &cobra.Command{
		Use:   "match <collection>",
		Short: "Print the statements matching a pattern",
		Long: `Print the statements of a collection matching every given position.

Objects are written in text form (_:1, "text", "text"@en, 42, 4.2, true).
With --range, the object must lie in [--from, --to) instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, rootOpts, opts, rdf.CollectionName(args[0]))
		},
	}

	cmd.Flags().StringVarP(&opts.Subject, "subject", "s", "", "subject entity (_:N)")
	cmd.Flags().StringVarP(&opts.Predicate, "predicate", "p", "", "predicate")
	cmd.Flags().StringVarP(&opts.Object, "object", "o", "", "object in text form")
	cmd.Flags().StringVar(&opts.Context, "context", "", "context entity (_:N)")
	cmd.Flags().StringVar(&opts.RangeKind, "range", "", "object range kind (long|double|string)")
	cmd.Flags().StringVar(&opts.From, "from", "", "inclusive lower bound of --range")
	cmd.Flags().StringVar(&opts.To, "to", "", "exclusive upper bound of --range")

	return cmd
}

func runMatch(cmd *cobra.Command, rootOpts *RootOptions, opts *MatchOptions, collection rdf.CollectionName) error {
	pattern, err := opts.pattern()
	if err != nil {
		return err
	}

	var objectRange rdf.Range
	if opts.RangeKind != "" {
		if pattern.Object != nil {
			return fmt.Errorf("--object and --range are mutually exclusive")
		}
		if objectRange, err = opts.objectRange(); err != nil {
			return err
		}
	}

	return rootOpts.withStore(func(s store.Store) error {
		statements, err := store.Compute(cmd.Context(), s, func(tx store.ReadTx) ([]rdf.Statement, error) {
			var (
				it  store.StatementIterator
				err error
			)
			if objectRange != nil {
				it, err = tx.MatchStatementsRange(collection, store.RangePattern{
					Subject:   pattern.Subject,
					Predicate: pattern.Predicate,
					Range:     objectRange,
					Context:   pattern.Context,
				})
			} else {
				it, err = tx.MatchStatements(collection, pattern)
			}
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
}

func (o *MatchOptions) pattern() (store.Pattern, error) {
	var p store.Pattern
	if o.Subject != "" {
		e, err := rdf.ParseEntity(o.Subject)
		if err != nil {
			return p, fmt.Errorf("--subject: %w", err)
		}
		p.Subject = &e
	}
	if o.Predicate != "" {
		pred, err := rdf.NewPredicate(o.Predicate)
		if err != nil {
			return p, fmt.Errorf("--predicate: %w", err)
		}
		p.Predicate = &pred
	}
	if o.Object != "" {
		obj, err := rdf.ParseObject(o.Object)
		if err != nil {
			return p, fmt.Errorf("--object: %w", err)
		}
		p.Object = obj
	}
	if o.Context != "" {
		e, err := rdf.ParseEntity(o.Context)
		if err != nil {
			return p, fmt.Errorf("--context: %w", err)
		}
		p.Context = &e
	}
	return p, nil
}

func (o *MatchOptions) objectRange() (rdf.Range, error) {
	switch o.RangeKind {
	case "long":
		from, err := strconv.ParseInt(o.From, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := strconv.ParseInt(o.To, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		return rdf.LongLiteralRange{From: from, To: to}, nil
	case "double":
		from, err := strconv.ParseFloat(o.From, 64)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := strconv.ParseFloat(o.To, 64)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		return rdf.DoubleLiteralRange{From: from, To: to}, nil
	case "string":
		return rdf.StringLiteralRange{From: o.From, To: o.To}, nil
	default:
		return nil, fmt.Errorf("invalid range kind %q: must be long, double or string", o.RangeKind)
	}
}
