package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "informações pessoais obtidas com sucesso", myInfo)
}

// UpdateMyPassword é o fluxo de troca de senha, inclusive o de primeiro
// acesso: a senha provisória recebida por e-mail entra como senha atual,
// pelo mesmo caminho. As etapas seguem esta ordem, parando na primeira
// falha: senha atual, política, histórico, gravação.
func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !utils.CheckPassword(myInfo.PasswordHash, req.OldPassword) {
		h.errorResponse(w, r, "senha atual incorreta")
		return
	}

	if violations := utils.ValidatePasswordPolicy(req.NewPassword); len(violations) > 0 {
		// registrar só os nomes das regras, nunca a senha
		slog.Info("nova senha recusada pela política", "userId", myInfo.ID, "regras", violations)
		h.errorResponse(w, r, "senha fraca: "+strings.Join(violations, "; "))
		return
	}

	if utils.CheckPassword(myInfo.PasswordHash, req.NewPassword) {
		h.errorResponse(w, r, "a nova senha não pode ser igual à atual")
		return
	}

	reused, err := h.passwordWasPreviouslyUsed(myInfo, req.NewPassword)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if reused {
		h.errorResponse(w, r, "a nova senha já foi utilizada recentemente, escolha outra")
		return
	}

	if err := h.commitNewPassword(myInfo, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atualizar a senha, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// a mesma sessão segue valendo: a conta sai do estado restrito sem
	// precisar de novo login
	h.successResponse(w, r, "senha atualizada com sucesso", map[string]any{
		"strength": utils.PasswordStrength(req.NewPassword),
	})
}

func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	notifications, err := h.repository.GetNotificationsByRecipient(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "notificações obtidas com sucesso", notifications)
}

func (h *Handler) MarkMyNotificationRead(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	notificationIDParam := chi.URLParam(r, "id")
	notificationID, err := strconv.ParseInt(notificationIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "ID de notificação inválido")
		return
	}

	if err := h.repository.MarkNotificationRead(notificationID, myInfo.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "notificação não encontrada")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "notificação marcada como lida", nil)
}
