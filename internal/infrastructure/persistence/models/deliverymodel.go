package models

import (
	"time"

	"tgnotify/internal/shared/constants"
)

type DeliveryModel struct {
	ID        uint      `gorm:"primaryKey"`
	Kind      string    `gorm:"size:32;not null;index"`
	ChatID    int64     `gorm:"not null"`
	ClientIP  string    `gorm:"size:64"`
	Status    string    `gorm:"size:16;not null;index"`
	Parts     int       `gorm:"not null;default:0"`
	Error     string    `gorm:"size:1024"`
	CreatedAt time.Time `gorm:"index"`
}

func (DeliveryModel) TableName() string {
	return constants.TableDeliveries
}
