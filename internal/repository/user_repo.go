package repository

import (
	"gorm.io/gorm"

	"bulk-payment-backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	var users []models.User
	err := r.db.Find(&users).Error
	return users, err
}

func (r *UserRepository) GetAllExemples() ([]models.Exemple, error) {
	var exemples []models.Exemple
	err := r.db.Find(&exemples).Error
	return exemples, err
}
