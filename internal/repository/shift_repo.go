package repository

import (
	"context"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/google/uuid"
)

func (s *store) ListShifts(ctx context.Context) ([]model.CashShift, error) {
	var shifts []model.CashShift
	err := s.db.WithContext(ctx).Order("start_time DESC").Find(&shifts).Error
	return shifts, translate(err, "list shifts")
}

func (s *store) FindShift(ctx context.Context, id uuid.UUID) (*model.CashShift, error) {
	var shift model.CashShift
	if err := s.db.WithContext(ctx).First(&shift, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find shift")
	}
	return &shift, nil
}

func (s *store) UpsertShift(ctx context.Context, shift *model.CashShift) (*model.CashShift, error) {
	db := s.db.WithContext(ctx)
	var err error
	if shift.ID == uuid.Nil {
		err = db.Create(shift).Error
	} else {
		err = db.Save(shift).Error
	}
	if err != nil {
		return nil, translate(err, "upsert shift")
	}
	return shift, nil
}

func (s *store) ListMovements(ctx context.Context) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := s.db.WithContext(ctx).Order("timestamp ASC").Find(&movs).Error
	return movs, translate(err, "list movements")
}

// AppendMovement is insert-only. Movements are never updated or deleted.
func (s *store) AppendMovement(ctx context.Context, m *model.CashMovement) (*model.CashMovement, error) {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, translate(err, "append movement")
	}
	return m, nil
}
