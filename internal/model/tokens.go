package model

import "time"

// QuoteAccessToken : одноразовый публичный токен доступа к смете.
// На одну смету в любой момент времени существует не более одного активного токена.
type QuoteAccessToken struct {
	Token        string     `db:"token" json:"token"`
	QuoteUUID    string     `db:"quote_uuid" json:"quote_uuid"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	ViewCount    int        `db:"view_count" json:"view_count"`
	LastViewedAt *time.Time `db:"last_viewed_at" json:"last_viewed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type RefreshToken struct {
	UUID      string     `db:"uuid"`
	UserUUID  string     `db:"user_uuid"`
	TokenHash string     `db:"token_hash"`
	ExpireAt  time.Time  `db:"expire_at"`
	Used      bool       `db:"used"`
	UserAgent string     `db:"user_agent"`
	IpAddress string     `db:"ip_address"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`
}
