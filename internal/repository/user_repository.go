package repository

import (
	"context"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository : профили отправителей. Регистрация и CRUD пользователей
// живут вне этого сервиса, здесь только чтение для логина и SenderContext.
type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `
		SELECT uuid, login, password_hash, company_name, company_email, company_phone, created_at
		FROM users
		WHERE uuid = $1
	`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, uuid)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByLogin : ищет пользователя по login
func (r *UserRepository) FindByLogin(ctx context.Context, exec sqlx.ExtContext, login string) (*model.User, error) {
	query := `
		SELECT uuid, login, password_hash, company_name, company_email, company_phone, created_at
		FROM users
		WHERE login = $1
	`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, login)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по login", err)
	}
	return &user, nil
}
