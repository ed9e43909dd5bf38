package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"index" json:"email"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Exemple struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string `gorm:"not null" json:"email"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
