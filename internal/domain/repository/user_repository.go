package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// UserRepository define el puerto de consulta de usuarios (actores).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID devuelve (nil, nil) si el usuario no existe.
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}
