package handler

import (
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"
)

// passwordWasPreviouslyUsed compara a senha candidata com cada hash do
// histórico (as 5 trocas anteriores, o hash atual não entra). O histórico é
// pequeno, então a sequência de comparações bcrypt não pesa.
func (h *Handler) passwordWasPreviouslyUsed(user *domain.User, password string) (bool, error) {
	hashes, err := h.repository.GetPasswordHistory(user.ID)
	if err != nil {
		return false, err
	}

	for _, hash := range hashes {
		if utils.CheckPassword(hash, password) {
			return true, nil
		}
	}

	return false, nil
}

// commitNewPassword grava a nova senha e libera a conta do estado de troca
// obrigatória. O UPDATE é guardado pela coluna version: se duas trocas
// simultâneas chegarem para a mesma conta, a segunda recebe sql.ErrNoRows e
// o usuário é orientado a tentar de novo.
func (h *Handler) commitNewPassword(user *domain.User, newPassword string) error {
	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	oldHash := user.PasswordHash
	now := time.Now()

	user.PasswordHash = newHash
	user.MustChangePassword = false
	user.LastPasswordChangeAt = &now

	if err := h.repository.UpdateUser(user); err != nil {
		return err
	}

	// arquivar o hash anterior depois do commit; o histórico guarda apenas
	// senhas que deixaram de valer
	return h.repository.ArchivePasswordHash(user.ID, oldHash)
}
