package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "lista de usuários obtida com sucesso", users)
}

// CreateUser é o cadastro feito pelo administrador: a conta nasce ativa,
// com senha provisória enviada por e-mail e troca obrigatória no primeiro
// acesso. A senha em texto só existe na mensagem para o worker de e-mail.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Role     string `json:"role" validate:"required,oneof=administrador supervisor gestor servidor"`
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

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	if err := utils.ValidateInitialPassword(password); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Name:               req.Name,
		Email:              normalizeEmail(req.Email),
		PasswordHash:       passwordHash,
		Role:               domain.Role(req.Role),
		SchoolID:           req.SchoolID,
		MustChangePassword: true,
		IsActive:           true,
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

	mailMessage := domain.MailMessage{
		Type: "new_account",
		To:   user.Email,
		Data: domain.NewAccountMailData{
			Name:     user.Name,
			Email:    user.Email,
			Password: password,
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "usuário criado com sucesso", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "informações do usuário obtidas com sucesso", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Role     *string `json:"role" validate:"omitempty,oneof=administrador supervisor gestor servidor"`
		SchoolID *int64  `json:"schoolId"`
		IsActive *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.SchoolID != nil {
		user.SchoolID = req.SchoolID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.badRequest(w, r, errors.New("e-mail já cadastrado"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atualizar o usuário, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "usuário atualizado com sucesso", user)
}

// ApproveUser ativa uma conta cadastrada via /auth/register e avisa o
// usuário por e-mail.
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if user.IsActive {
		h.errorResponse(w, r, "a conta já está ativa")
		return
	}

	user.IsActive = true
	if err := h.repository.UpdateUser(user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível aprovar a conta, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := domain.MailMessage{
		Type: "account_approved",
		To:   user.Email,
		Data: domain.AccountApprovedMailData{
			Name: user.Name,
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "conta aprovada com sucesso", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "usuário excluído com sucesso", nil)
}

// ResetUserPassword é o reset administrativo: gera uma senha provisória,
// envia por e-mail e volta a exigir troca no próximo acesso.
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	if err := utils.ValidateInitialPassword(password); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	oldHash := user.PasswordHash
	user.PasswordHash = passwordHash
	user.MustChangePassword = true

	if err := h.repository.UpdateUser(user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível redefinir a senha, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.ArchivePasswordHash(user.ID, oldHash); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "new_account",
		To:   user.Email,
		Data: domain.NewAccountMailData{
			Name:     user.Name,
			Email:    user.Email,
			Password: password,
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "senha redefinida e enviada por e-mail", nil)
}
