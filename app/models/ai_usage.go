package models

import "time"

// AIUsage is an append-only record of one AI chat completion. Records are
// never updated or deleted; quota checks aggregate them over a trailing
// 24-hour window.
type AIUsage struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_ai_usage_user_created,priority:1" json:"user_id"`
	InputTokens  int       `gorm:"not null;default:0" json:"input_tokens"`
	OutputTokens int       `gorm:"not null;default:0" json:"output_tokens"`
	Model        string    `gorm:"type:varchar(100);not null" json:"model"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_ai_usage_user_created,priority:2" json:"created_at"`
}
