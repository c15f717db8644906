package sequence

import (
	"context"
	"fmt"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBAllocator backs counters with a row per name in the sequences table.
type DBAllocator struct {
	db *gorm.DB
}

func NewDBAllocator(conn *gorm.DB) (*DBAllocator, error) {
	if conn == nil {
		return nil, fmt.Errorf("db required")
	}
	return &DBAllocator{db: conn}, nil
}

func (a *DBAllocator) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := lockSequence(tx, name)
		if err != nil {
			return err
		}
		next = seq.Value + 1
		return tx.Model(&models.Sequence{}).
			Where("name = ?", name).
			Update("value", next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return next, nil
}

func (a *DBAllocator) Seed(ctx context.Context, name string, floor int64) error {
	if floor <= 0 {
		return nil
	}
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockSequence(tx, name); err != nil {
			return err
		}
		return tx.Model(&models.Sequence{}).
			Where("name = ? AND value < ?", name, floor).
			Update("value", floor).Error
	})
	if err != nil {
		return fmt.Errorf("seed sequence %s: %w", name, err)
	}
	return nil
}

func lockSequence(tx *gorm.DB, name string) (models.Sequence, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Sequence{Name: name}).Error; err != nil {
		return models.Sequence{}, err
	}
	var seq models.Sequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&seq).Error
	return seq, err
}
