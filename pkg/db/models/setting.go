package models

import "time"

// SettingsRowID is the primary key of the single system settings row.
const SettingsRowID = 1

// Setting is the single-row system configuration. StatsStartDate is the
// consumption aggregator's cutoff: advancing it "resets" the counters without
// touching the audit trail.
type Setting struct {
	ID               int        `gorm:"column:id;primaryKey" json:"-"`
	StatsStartDate   *time.Time `gorm:"column:stats_start_date" json:"statsStartDate,omitempty"`
	PhoneNumber      string     `gorm:"column:phone_number" json:"phoneNumber"`
	TelegramBotToken string     `gorm:"column:telegram_bot_token" json:"telegramBotToken,omitempty"`
	TelegramChatID   string     `gorm:"column:telegram_chat_id" json:"telegramChatId,omitempty"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Setting) TableName() string {
	return "settings"
}
