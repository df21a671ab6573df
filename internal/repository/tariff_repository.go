package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// TariffModel is the GORM model for the tariffs table, one row per vehicle class.
type TariffModel struct {
	VehicleClass string    `gorm:"primaryKey;size:10"`
	RatePerKm    float64   `gorm:"not null"`
	MinimumPrice float64   `gorm:"not null"`
	Currency     string    `gorm:"not null;size:3;default:'GEL'"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TariffModel) TableName() string {
	return "tariffs"
}

// GormTariffRepository is the GORM-based implementation of TariffRepository.
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository.
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// LoadPlan retrieves the stored tariff plan. An empty plan is returned when
// no rows exist yet.
func (r *GormTariffRepository) LoadPlan(ctx context.Context) (quoteDomain.TariffPlan, error) {
	var models []TariffModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load tariff plan: %w", err)
	}

	plan := make(quoteDomain.TariffPlan, len(models))
	for _, m := range models {
		plan[quoteDomain.VehicleClass(m.VehicleClass)] = quoteDomain.Tariff{
			RatePerKm:    m.RatePerKm,
			MinimumPrice: m.MinimumPrice,
			Currency:     m.Currency,
		}
	}
	return plan, nil
}

// SavePlan upserts every class entry of the given plan in one transaction.
func (r *GormTariffRepository) SavePlan(ctx context.Context, plan quoteDomain.TariffPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for class, tariff := range plan {
			model := TariffModel{
				VehicleClass: string(class),
				RatePerKm:    tariff.RatePerKm,
				MinimumPrice: tariff.MinimumPrice,
				Currency:     tariff.Currency,
				UpdatedAt:    time.Now().UTC(),
			}

			result := tx.Model(&TariffModel{}).
				Where("vehicle_class = ?", model.VehicleClass).
				Updates(map[string]interface{}{
					"rate_per_km":   model.RatePerKm,
					"minimum_price": model.MinimumPrice,
					"currency":      model.Currency,
					"updated_at":    model.UpdatedAt,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to update tariff for %s: %w", model.VehicleClass, result.Error)
			}

			if result.RowsAffected == 0 {
				if err := tx.Create(&model).Error; err != nil {
					return fmt.Errorf("failed to insert tariff for %s: %w", model.VehicleClass, err)
				}
			}
		}
		return nil
	})
}
