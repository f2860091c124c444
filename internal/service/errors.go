package service

import (
	"errors"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/middleware"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = middleware.ErrTokenExpired
)
