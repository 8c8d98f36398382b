package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "client-tasks.com/client-tasks/internal/models"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, name string) (*model.Client, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	client := &model.Client{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}

	return client, nil
}

// FindAll lists clients in insertion order.
func (r *ClientRepository) FindAll(ctx context.Context) ([]model.Client, error) {
	clients := make([]model.Client, 0)
	err := r.db.WithContext(ctx).Order("created_at asc").Order("id asc").Find(&clients).Error
	return clients, err
}
