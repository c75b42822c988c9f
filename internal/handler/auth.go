package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func revokedTokenKey(tokenID string) string {
	return "revoked_token_" + tokenID
}

func resetPasswordOTPKey(email string) string {
	return fmt.Sprintf("otp_%s_reset_password", email)
}

// normalizeEmail padroniza o identificador de login.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// a mesma mensagem cobre conta inexistente e senha errada, para não
	// permitir enumeração de e-mails cadastrados
	user, err := h.repository.GetUserByEmail(normalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "e-mail ou senha incorretos")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "e-mail ou senha incorretos")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// contas ainda não aprovadas pelo administrador não entram
	if !user.IsActive && user.Role != domain.RoleAdministrator {
		h.errorResponse(w, r, "conta aguardando aprovação do administrador")
		return
	}

	// gerar o JWT
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.GenerateRandomID(16, 8),
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	// o cliente decide pelo campo mustChangePassword se redireciona para a
	// tela de troca obrigatória
	h.successResponse(w, r, "login realizado com sucesso", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// revogar o token atual para que não possa ser reutilizado
	if cookie, err := r.Cookie(authCookieName); err == nil {
		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err == nil && claims.ID != "" && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
				defer cancel()

				if err := h.redisClient.Set(ctx, revokedTokenKey(claims.ID), "1", ttl).Err(); err != nil {
					h.internalServerError(w, r, err)
					return
				}
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    authCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "logout realizado com sucesso", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required,oneof=gestor servidor"`
		SchoolID *int64 `json:"schoolId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if violations := utils.ValidatePasswordPolicy(req.Password); len(violations) > 0 {
		h.errorResponse(w, r, "senha fraca: "+strings.Join(violations, "; "))
		return
	}

	email := normalizeEmail(req.Email)

	// checagem antecipada para responder antes de gastar um bcrypt; a
	// constraint abaixo continua cobrindo a corrida entre duas inscrições
	emailExists, err := h.repository.CheckEmailIfExists(email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if emailExists {
		h.badRequest(w, r, errors.New("e-mail já cadastrado"))
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// a conta nasce inativa e só passa a logar depois da aprovação do
	// administrador; como o usuário escolheu a própria senha, não há
	// troca obrigatória no primeiro acesso
	user := &domain.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.Role(req.Role),
		SchoolID:     req.SchoolID,
		IsActive:     false,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.badRequest(w, r, errors.New("e-mail já cadastrado"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "cadastro enviado para aprovação do administrador", user)
}

// PasswordStrength devolve a pontuação informativa de força da senha.
// Não grava nada e não é critério de aprovação.
func (h *Handler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "força da senha calculada", map[string]any{
		"score":      utils.PasswordStrength(req.Password),
		"violations": utils.ValidatePasswordPolicy(req.Password),
	})
}

func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	email := normalizeEmail(req.Email)

	user, err := h.repository.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// mesmo sabendo que a conta não existe, respondemos como se o
			// e-mail tivesse sido enviado, para evitar abuso do endpoint
			h.successResponse(w, r, "o código de redefinição foi enviado por e-mail", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := h.redisClient.Set(ctx, resetPasswordOTPKey(email), otp, time.Duration(h.config.OTP.Expiration)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "reset_password",
		To:   user.Email,
		Data: domain.ResetPasswordMailData{
			Name:       user.Name,
			OTP:        otp,
			Expiration: h.config.OTP.Expiration / 60, // no e-mail a validade aparece em minutos
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "o código de redefinição foi enviado por e-mail", nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	email := normalizeEmail(req.Email)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	otp, err := h.redisClient.Get(ctx, resetPasswordOTPKey(email)).Result()
	if err != nil {
		h.errorResponse(w, r, "código de verificação inválido")
		return
	}

	if otp != req.OTP {
		h.errorResponse(w, r, "código de verificação inválido")
		return
	}

	user, err := h.repository.GetUserByEmail(email)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// a nova senha passa pela mesma política e pelo mesmo histórico da
	// troca normal
	if violations := utils.ValidatePasswordPolicy(req.Password); len(violations) > 0 {
		h.errorResponse(w, r, "senha fraca: "+strings.Join(violations, "; "))
		return
	}

	reused, err := h.passwordWasPreviouslyUsed(user, req.Password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if reused {
		h.errorResponse(w, r, "a nova senha já foi utilizada recentemente, escolha outra")
		return
	}

	if err := h.commitNewPassword(user, req.Password); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível redefinir a senha, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.redisClient.Del(ctx, resetPasswordOTPKey(email)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "senha redefinida com sucesso", nil)
}
