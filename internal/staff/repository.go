package staff

import (
	"context"

	"github.com/angelmondragon/homeservices-backend/internal/repo"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists staff directory entries.
type Repository struct {
	repo.Base
}

// NewRepository builds a staff repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bound(tx)}
}

func (r *Repository) Create(ctx context.Context, member *models.Staff) (*models.Staff, error) {
	if err := r.DB(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *Repository) Save(ctx context.Context, member *models.Staff) (*models.Staff, error) {
	if err := r.DB(ctx).Save(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	var member models.Staff
	if err := r.DB(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// PhoneTaken reports whether a member other than exclude already uses phone.
func (r *Repository) PhoneTaken(ctx context.Context, phone string, exclude *uuid.UUID) (bool, error) {
	q := r.DB(ctx).Model(&models.Staff{}).Where("phone = ?", phone)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Staff, error) {
	var members []models.Staff
	if err := r.DB(ctx).Order("name ASC").Order("created_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
