package requestresponse

// LoginRequest : тело запроса для входа
type LoginRequest struct {
	Login    string `json:"login" example:"sparky-ltd"`
	Password string `json:"password" example:"secret"`
}

// RefreshTokenRequest : тело запроса для обновления пары токенов
type RefreshTokenRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse : ответ с парой токенов
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
