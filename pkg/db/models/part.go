package models

import (
	"fmt"
	"time"
)

// Location pins a part to a physical rack/row/bin slot.
type Location struct {
	Rack string `gorm:"column:rack;not null" json:"rack"`
	Row  string `gorm:"column:row;not null" json:"row"`
	Bin  string `gorm:"column:bin;not null" json:"bin"`
}

// String renders the canonical rack-row-bin label used on location QR codes.
func (l Location) String() string {
	return fmt.Sprintf("%s-%s-%s", orQuestion(l.Rack), orQuestion(l.Row), orQuestion(l.Bin))
}

func orQuestion(v string) string {
	if v == "" {
		return "?"
	}
	return v
}

// Part is the stock ledger's unit of inventory. Quantity never goes negative;
// every mutation flows through the ledger service.
type Part struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Quantity  int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Image     *string   `gorm:"column:image" json:"image,omitempty"`
	Location  Location  `gorm:"embedded;embeddedPrefix:loc_" json:"location"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Part) TableName() string {
	return "parts"
}
