package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

type orderRepository struct {
	db *gorm.DB
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	rec := toOrderModel(order)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *orderRepository) SetPaymentID(ctx context.Context, orderID, paymentID string) error {
	res := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("order_id = ?", orderID).
		Update("payment_id", paymentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrOrderNotFound, "order %s", orderID)
	}
	return nil
}
