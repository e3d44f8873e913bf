package matches

import "context"

// Store defines the contract for the match ledger.
type Store interface {
	// ListMatches returns every stored match in chronological order.
	ListMatches(ctx context.Context) ([]Match, error)
	// UpsertMatches inserts or replaces matches by Key.
	UpsertMatches(ctx context.Context, ms []Match) error
}
