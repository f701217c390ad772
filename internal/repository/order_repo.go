package repository

import (
	"context"
	"time"

	"yardpos/internal/dto"
	"yardpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Save(ctx context.Context, tx *gorm.DB, o *model.Order) error
	Delete(ctx context.Context, o *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	CreatePayment(ctx context.Context, tx *gorm.DB, p *model.OrderPayment) error
	NextOrderNumber(ctx context.Context) (int, error)
	List(ctx context.Context, operatorID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error)
	// ListCompletedInWindow returns completed orders for reconciliation:
	// operator-scoped, inside [from, to), cancelled ones included so the
	// reporting layer can filter them explicitly.
	ListCompletedInWindow(ctx context.Context, operatorID uuid.UUID, from time.Time, to *time.Time) ([]model.Order, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		Preload("Payment").
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Omit("Items", "Customer", "Payment").Save(o).Error
}

func (r *orderRepo) Delete(ctx context.Context, o *model.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("order_id = ?", o.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(o).Error
	})
}

func (r *orderRepo) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *orderRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.OrderItem{}, id).Error
}

func (r *orderRepo) CreatePayment(ctx context.Context, tx *gorm.DB, p *model.OrderPayment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *orderRepo) NextOrderNumber(ctx context.Context) (int, error) {
	// PostgreSQL sequence keeps numbering atomic across concurrent sessions.
	var num int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('orders_number_seq')").Scan(&num).Error
	return num, err
}

func (r *orderRepo) List(ctx context.Context, operatorID uuid.UUID, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("operator_id = ?", operatorID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").Preload("Customer").Preload("Payment").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListCompletedInWindow(ctx context.Context, operatorID uuid.UUID, from time.Time, to *time.Time) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ? AND completed_at >= ?",
			operatorID, model.OrderCompleted, from)
	if to != nil {
		q = q.Where("completed_at < ?", *to)
	}
	err := q.Preload("Items").Preload("Payment").
		Order("completed_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}
