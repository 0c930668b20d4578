package ports

import (
	"context"
	"quote-web-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository : профили отправителей; пользователи заводятся вне этого сервиса
type UserRepository interface {
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error)
}
