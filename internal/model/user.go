package model

import "time"

// User : профиль отправителя (электромонтажная компания)
type User struct {
	UUID         string    `db:"uuid" json:"uuid"`
	Login        string    `db:"login" json:"login"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CompanyName  string    `db:"company_name" json:"company_name"`
	CompanyEmail string    `db:"company_email" json:"company_email"`
	CompanyPhone string    `db:"company_phone" json:"company_phone"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SenderContext : явный контекст отправителя, передается в оркестратор и композер
// вместо чтения глобального "текущего пользователя"
type SenderContext struct {
	UserUUID     string
	CompanyName  string
	CompanyEmail string
	CompanyPhone string
	Origin       string // внешний origin для публичных ссылок
}

func SenderContextFromUser(u *User, origin string) SenderContext {
	return SenderContext{
		UserUUID:     u.UUID,
		CompanyName:  u.CompanyName,
		CompanyEmail: u.CompanyEmail,
		CompanyPhone: u.CompanyPhone,
		Origin:       origin,
	}
}
