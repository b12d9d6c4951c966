// Package ligature opens transactional quad stores.
//
// A store holds statements (subject, predicate, object, context) grouped
// into named collections. Every collection is indexed six ways so that any
// combination of bound positions is answered by a single prefix or range
// scan.
//
// # Quick Start
//
//	s, err := ligature.Open("./data", ligature.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = store.Write(ctx, s, func(tx store.WriteTx) error {
//	    alice, err := tx.NewEntity("people")
//	    if err != nil {
//	        return err
//	    }
//	    return tx.AddStatement("people", rdf.NewStatement(
//	        alice, rdf.MustPredicate("name"), rdf.StringLiteral("Alice"), alice))
//	})
//
// # Transactions
//
// Read transactions see a snapshot taken when they open and never block.
// One write transaction may be open at a time; WriteTx waits for the
// current writer while TryWriteTx fails with store.ErrConcurrency.
// Closing the store cancels every open transaction.
package ligature
