package mysql

import (
	"context"

	eventDomain "agrifi-backend/internal/domain/event"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *eventDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListByRef(ctx context.Context, ledger string, refID uint64) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	res := r.db.WithContext(ctx).
		Where("ledger = ? AND ref_id = ?", ledger, refID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
