package repository

import (
	"context"

	"yardpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	// FindOrCreateByName upserts a customer keyed by (operator, name).
	FindOrCreateByName(ctx context.Context, operatorID uuid.UUID, name string) (*model.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	Save(ctx context.Context, tx *gorm.DB, c *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindOrCreateByName(ctx context.Context, operatorID uuid.UUID, name string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND name = ?", operatorID, name).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	c = model.Customer{OperatorID: operatorID, Name: name}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Save(ctx context.Context, tx *gorm.DB, c *model.Customer) error {
	return tx.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, id).Error
}
