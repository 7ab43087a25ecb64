package analytics

import (
	"context"

	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
)

// Repository pulls the full collections the aggregates scan. There is no
// filtered variant: the aggregation family always works on everything.
type Repository interface {
	AllBookings(ctx context.Context) ([]models.Booking, error)
	AllUsers(ctx context.Context) ([]models.User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) AllBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repositoryImpl) AllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
