package quote

import (
	"context"

	"github.com/google/uuid"
)

// QuoteRepository defines the persistence contract for quote aggregates.
type QuoteRepository interface {
	// FindByID retrieves a quote by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByNumber retrieves a quote by its human-readable quote number.
	FindByNumber(ctx context.Context, number string) (*Quote, error)

	// ListAll retrieves all quotes with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Quote, int64, error)

	// ListByStatus retrieves quotes in a given status with pagination.
	ListByStatus(ctx context.Context, status QuoteStatus, page, limit int) ([]*Quote, int64, error)

	// CountByStatus returns quote counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new quote.
	Save(ctx context.Context, quote *Quote) error

	// Update persists changes to an existing quote with optimistic locking.
	Update(ctx context.Context, quote *Quote) error
}

// TariffRepository defines the persistence contract for the tariff plan.
type TariffRepository interface {
	// LoadPlan retrieves the stored tariff plan. Implementations return an
	// empty plan when no rows exist yet.
	LoadPlan(ctx context.Context) (TariffPlan, error)

	// SavePlan upserts every class entry of the given plan.
	SavePlan(ctx context.Context, plan TariffPlan) error
}
