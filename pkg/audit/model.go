// Package audit persists every FIX message crossing the session for later
// replay and inspection.
package audit

import (
	"time"
)

// MessageRecord is one stored FIX message.
type MessageRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id"`
	Inbound   bool      `gorm:"column:inbound"`
	MsgType   string    `gorm:"column:msg_type"`
	Raw       string    `gorm:"column:raw"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (MessageRecord) TableName() string {
	return "fix_messages"
}
