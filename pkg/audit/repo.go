package audit

import (
	"context"

	"gorm.io/gorm"
)

type IMessageRepo interface {
	Create(ctx context.Context, record *MessageRecord) (*MessageRecord, error)
	BulkCreate(ctx context.Context, records []*MessageRecord) ([]*MessageRecord, error)
	Recent(ctx context.Context, limit int) ([]*MessageRecord, error)
}

type MessageSQLRepo struct {
	db *gorm.DB
}

func NewMessageSQLRepo(db *gorm.DB) *MessageSQLRepo {
	return &MessageSQLRepo{
		db: db,
	}
}

func (s *MessageSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (r *MessageSQLRepo) Create(ctx context.Context, record *MessageRecord) (*MessageRecord, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *MessageSQLRepo) BulkCreate(ctx context.Context, records []*MessageRecord) ([]*MessageRecord, error) {
	return records, r.dbWithContext(ctx).Create(records).Error
}

func (r *MessageSQLRepo) Recent(ctx context.Context, limit int) ([]*MessageRecord, error) {
	var records []*MessageRecord
	err := r.dbWithContext(ctx).Order("id desc").Limit(limit).Find(&records).Error
	return records, err
}
