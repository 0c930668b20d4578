package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"quote-web-server/config"
	"quote-web-server/internal/model/requestresponse"
	"quote-web-server/internal/ports"
	"quote-web-server/internal/util"
	"strings"
)

type AuthenticationHandler struct {
	ports.AuthenticationServiceInterface
	ports.JWTServiceInterface
	cfg *config.JWTConfig
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationServiceInterface,
	jwtServiceInterface ports.JWTServiceInterface,
	cfg *config.JWTConfig,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		jwtServiceInterface,
		cfg,
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары токенов по логину и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		util.HandleError(w, "login и password обязательны", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationServiceInterface.Login(ctx, req.Login, req.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		log.Println(err)
		switch {
		case strings.Contains(err.Error(), "не найден"):
			util.HandleError(w, "пользователь не найден", http.StatusNotFound)
		case strings.Contains(err.Error(), "неверный пароль"):
			util.HandleError(w, "неверный логин или пароль", http.StatusUnauthorized)
		default:
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Обновляет пару токенов (access и refresh) по действующей паре
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.LoginResponse "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован или невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		util.HandleError(w, "пустой или неверный заголовок Authorization", http.StatusUnauthorized)
		return
	}

	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	var req requestresponse.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.HandleError(w, "неверный JSON", http.StatusBadRequest)
		return
	}

	tokensPair, err := h.AuthenticationServiceInterface.RefreshToken(ctx, r.UserAgent(), r.RemoteAddr, accessToken, req.RefreshToken)
	if err != nil {
		log.Println(err)
		switch {
		case strings.Contains(err.Error(), "не удалось провалидировать токен"),
			strings.Contains(err.Error(), "не удалось найти рефреш токен"),
			strings.Contains(err.Error(), "невалидный токен"):
			util.HandleError(w, "не удалось обновить токены", http.StatusUnauthorized)
		case strings.Contains(err.Error(), "ошибка генерации токенов"),
			strings.Contains(err.Error(), "не удалось сохранить рефреш токен"),
			strings.Contains(err.Error(), "не удалось использовать токен"):
			util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		default:
			util.HandleError(w, "неизвестная ошибка", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  tokensPair.AccessToken,
		RefreshToken: tokensPair.RefreshToken,
	})
}

// Logout godoc
// @Summary Завершение авторизованной сессии
// @Description Инвалидирует refresh-токен по access-токену из заголовка Authorization
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ResponseMessage
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		util.HandleError(w, "пустой или неверный заголовок Authorization", http.StatusUnauthorized)
		return
	}

	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := h.JWTServiceInterface.ValidateJWT(accessToken, []byte(h.cfg.SecretKey))
	if err != nil {
		util.HandleError(w, "невалидный токен", http.StatusUnauthorized)
		return
	}

	if err := h.AuthenticationServiceInterface.Logout(ctx, claims.RefreshTokenUUID); err != nil {
		log.Println(err)
		if strings.Contains(err.Error(), "не удалось использовать токен") {
			util.HandleError(w, "сессия уже завершена", http.StatusBadRequest)
		} else {
			util.HandleError(w, "неизвестная ошибка", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.ResponseMessage{
		Response: map[string]interface{}{"logout": true},
	})
}
