package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/domain"
)

// QuoteModel is the GORM model for the quotes table.
type QuoteModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteNumber  string          `gorm:"uniqueIndex;not null;size:20"`
	Origin       json.RawMessage `gorm:"type:jsonb;not null"`
	Destination  json.RawMessage `gorm:"type:jsonb;not null"`
	VehicleClass string          `gorm:"not null;size:10;index"`
	PackageSpec  json.RawMessage `gorm:"type:jsonb;not null"`
	Status       string          `gorm:"not null;size:20;index"`
	RouteSpec    json.RawMessage `gorm:"type:jsonb"`
	PriceUnits   *float64        `gorm:""`
	Currency     string          `gorm:"not null;size:3;default:'GEL'"`
	FailReason   string          `gorm:"size:500"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"not null;index"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (QuoteModel) TableName() string {
	return "quotes"
}

// GormQuoteRepository is the GORM-based implementation of QuoteRepository.
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository.
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID retrieves a quote by its unique identifier.
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoteDomain.Quote, error) {
	var model QuoteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("quote", id.String())
		}
		return nil, fmt.Errorf("failed to find quote by ID: %w", err)
	}
	return toDomainQuote(&model)
}

// FindByNumber retrieves a quote by its quote number.
func (r *GormQuoteRepository) FindByNumber(ctx context.Context, number string) (*quoteDomain.Quote, error) {
	var model QuoteModel
	if err := r.db.WithContext(ctx).Where("quote_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("quote", number)
		}
		return nil, fmt.Errorf("failed to find quote by number: %w", err)
	}
	return toDomainQuote(&model)
}

// ListAll retrieves all quotes with pagination (admin).
func (r *GormQuoteRepository) ListAll(ctx context.Context, page, limit int) ([]*quoteDomain.Quote, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	var models []QuoteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}

	return toDomainQuotes(models, total)
}

// ListByStatus retrieves quotes in a given status with pagination.
func (r *GormQuoteRepository) ListByStatus(ctx context.Context, status quoteDomain.QuoteStatus, page, limit int) ([]*quoteDomain.Quote, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).Where("status = ?", string(status)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes by status: %w", err)
	}

	var models []QuoteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes by status: %w", err)
	}

	return toDomainQuotes(models, total)
}

// CountByStatus returns quote counts grouped by status (admin).
func (r *GormQuoteRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new quote.
func (r *GormQuoteRepository) Save(ctx context.Context, q *quoteDomain.Quote) error {
	model, err := toQuoteModel(q)
	if err != nil {
		return fmt.Errorf("failed to convert quote to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// Update persists changes to an existing quote with optimistic locking.
func (r *GormQuoteRepository) Update(ctx context.Context, q *quoteDomain.Quote) error {
	model, err := toQuoteModel(q)
	if err != nil {
		return fmt.Errorf("failed to convert quote to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := q.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&QuoteModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"route_spec":  model.RouteSpec,
			"price_units": model.PriceUnits,
			"currency":    model.Currency,
			"fail_reason": model.FailReason,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update quote: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("quote was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toQuoteModel(q *quoteDomain.Quote) (*QuoteModel, error) {
	originJSON, err := json.Marshal(q.Origin())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal origin: %w", err)
	}

	destinationJSON, err := json.Marshal(q.Destination())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal destination: %w", err)
	}

	packageJSON, err := json.Marshal(q.PackageSpec())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal package spec: %w", err)
	}

	var routeJSON json.RawMessage
	if q.RouteSpec() != nil {
		data, err := json.Marshal(q.RouteSpec())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal route spec: %w", err)
		}
		routeJSON = data
	}

	return &QuoteModel{
		ID:           q.ID(),
		QuoteNumber:  q.QuoteNumber(),
		Origin:       originJSON,
		Destination:  destinationJSON,
		VehicleClass: string(q.VehicleClass()),
		PackageSpec:  packageJSON,
		Status:       string(q.Status()),
		RouteSpec:    routeJSON,
		PriceUnits:   q.PriceUnits(),
		Currency:     q.Currency(),
		FailReason:   q.FailReason(),
		Version:      q.Version(),
		CreatedAt:    q.CreatedAt(),
		UpdatedAt:    q.UpdatedAt(),
	}, nil
}

func toDomainQuote(m *QuoteModel) (*quoteDomain.Quote, error) {
	var origin quoteDomain.GeoPoint
	if err := json.Unmarshal(m.Origin, &origin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal origin: %w", err)
	}

	var destination quoteDomain.GeoPoint
	if err := json.Unmarshal(m.Destination, &destination); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destination: %w", err)
	}

	var packageSpec quoteDomain.PackageSpec
	if err := json.Unmarshal(m.PackageSpec, &packageSpec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal package spec: %w", err)
	}

	var routeSpec *quoteDomain.RouteSpec
	if len(m.RouteSpec) > 0 {
		var rs quoteDomain.RouteSpec
		if err := json.Unmarshal(m.RouteSpec, &rs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal route spec: %w", err)
		}
		routeSpec = &rs
	}

	status, err := quoteDomain.ParseQuoteStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return quoteDomain.ReconstructQuote(
		m.ID,
		m.QuoteNumber,
		origin,
		destination,
		quoteDomain.VehicleClass(m.VehicleClass),
		packageSpec,
		status,
		routeSpec,
		m.PriceUnits,
		m.Currency,
		m.FailReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainQuotes(models []QuoteModel, total int64) ([]*quoteDomain.Quote, int64, error) {
	quotes := make([]*quoteDomain.Quote, len(models))
	for i, m := range models {
		q, err := toDomainQuote(&m)
		if err != nil {
			return nil, 0, err
		}
		quotes[i] = q
	}
	return quotes, total, nil
}
