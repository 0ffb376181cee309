package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Client struct {
	ID               int64   `gorm:"primaryKey;autoIncrement"`
	Name             string  `gorm:"size:255;not null"`
	Email            string  `gorm:"size:255;uniqueIndex"`
	Phone            *string `gorm:"size:50"`
	Tier             string  `gorm:"size:20;index"`
	LastContactDate  *time.Time
	LastPurchaseDate *time.Time
	LifetimeSpend    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes            *string         `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	WaitlistEntries []WaitlistEntry `gorm:"foreignKey:ClientID"`
	Reminders       []Reminder      `gorm:"foreignKey:ClientID"`
}

type Watch struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	Model             string          `gorm:"size:255;not null"`
	ReferenceNumber   string          `gorm:"size:100;uniqueIndex"`
	Tier              int32           `gorm:"not null;index"`
	AvailableQuantity int32           `gorm:"not null;default:0"`
	RetailPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type WaitlistEntry struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	ClientID     int64   `gorm:"not null;index"`
	DesiredModel *string `gorm:"size:255"`
	DesiredTier  *int32
	AddedAt      time.Time `gorm:"not null"`
	IsActive     bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

type Reminder struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	ClientID     int64     `gorm:"not null;index"`
	ReminderDate time.Time `gorm:"not null;index"`
	Type         string    `gorm:"size:50;not null"`
	Notes        *string   `gorm:"type:text"`
	IsCompleted  bool      `gorm:"not null;default:false"`
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	IsActive  bool   `gorm:"default:true"`
	LastLogin *time.Time
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

func MigrateCRMDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&Client{},
		&Watch{},
		&WaitlistEntry{},
		&Reminder{},
		&User{},
	)
}
