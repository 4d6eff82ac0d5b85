package models

import (
	"time"
)

// Bank is a catalog owner: every FD plan and sheet upload belongs to one bank.
type Bank struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Code          string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description   *string `gorm:"type:text" json:"description,omitempty"`
	ContactPerson *string `gorm:"type:varchar(255)" json:"contact_person,omitempty"`
	Email         *string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone         *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Address       *string `gorm:"type:text" json:"address,omitempty"`
	IsActive      bool    `gorm:"not null;default:true;index" json:"is_active"`

	Plans []Plan `gorm:"foreignKey:BankID;constraint:OnDelete:CASCADE" json:"plans,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Bank) TableName() string {
	return "banks"
}
