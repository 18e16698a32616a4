package repository

import (
	"context"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
)

func (s *store) ListExternalOrders(ctx context.Context) ([]model.ExternalOrder, error) {
	var orders []model.ExternalOrder
	err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	return orders, translate(err, "list online orders")
}

func (s *store) FindExternalOrder(ctx context.Context, id string) (*model.ExternalOrder, error) {
	var o model.ExternalOrder
	if err := s.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find online order")
	}
	return &o, nil
}

// UpdateExternalOrderStatus writes status (plus the settlement context) by id
// and reports the affected row count. No RETURNING clause is used: a row-level
// policy that hides the row after the update must not turn into an error.
func (s *store) UpdateExternalOrderStatus(ctx context.Context, id string, status model.OrderStatus, sc StatusContext) (StatusUpdate, error) {
	patch := model.ExternalOrder{Status: status, ShiftID: sc.ShiftID}
	columns := []string{"status"}
	if sc.ShiftID != nil {
		columns = append(columns, "shift_id")
	}
	if sc.Tender != nil {
		label := sc.Tender.Label()
		patch.PaymentMethod = &label
		columns = append(columns, "payment_method")
	}

	q := s.db.WithContext(ctx).Model(&model.ExternalOrder{}).Where("id = ?", id)
	if sc.Expect != "" {
		q = q.Where("status = ?", sc.Expect)
	}
	res := q.Select(columns).Updates(&patch)
	if res.Error != nil {
		return StatusUpdate{}, translate(res.Error, "update online order status")
	}
	return StatusUpdate{Applied: res.RowsAffected > 0, RowsAffected: res.RowsAffected}, nil
}
