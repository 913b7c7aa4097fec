package models

import "time"

// User is an operator identity; the ID doubles as the scannable badge credential.
// The supervisor is a fixed sentinel outside this table.
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	IsSupervisor bool      `gorm:"column:is_supervisor;not null;default:false" json:"isSupervisor"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}
