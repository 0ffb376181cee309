package handler

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/database/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticate verifies credentials and records the login time.
func (h *CRMHandler) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := h.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, persistenceErr("authenticate", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := h.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		h.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	return &user, nil
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
}

func (h *CRMHandler) RegisterUser(ctx context.Context, p RegisterParams) (*models.User, error) {
	if len(p.Password) < 6 {
		return nil, &crm.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: p.Username,
		Email:    p.Email,
		Password: string(hash),
		IsActive: true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, persistenceErr("register user", err)
	}
	return &user, nil
}
