package model

import "time"

type StoredCredential struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StoredCredential) TableName() string {
	return "stored_credentials"
}
