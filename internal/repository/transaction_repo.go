package repository

import (
	"context"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"gorm.io/gorm"
)

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments")
}

func (s *store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := withLines(s.db.WithContext(ctx)).Order("created_at DESC").Find(&txs).Error
	return txs, translate(err, "list transactions")
}

// AppendTransaction inserts the transaction with its items and payments.
// A second transaction for the same online order fails with ErrDuplicate.
func (s *store) AppendTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, translate(err, "append transaction")
	}
	return tx, nil
}

func (s *store) FindTransactionByOnlineOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := withLines(s.db.WithContext(ctx)).Where("online_order_id = ?", orderID).First(&tx).Error
	if err != nil {
		return nil, translate(err, "find transaction by online order")
	}
	return &tx, nil
}
