package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func updatePasswordRequest(t *testing.T, user *domain.User, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPatch, "/my-info/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), MyInfoCtx, user)
	return req.WithContext(ctx)
}

func firstAccessUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:                 7,
		Name:               "Maria Silva",
		Email:              "maria@seduc.gov.br",
		PasswordHash:       hashForTest(t, "Provisoria1!"),
		Role:               domain.RoleStandard,
		MustChangePassword: true,
		IsActive:           true,
		Version:            1,
	}
}

func TestUpdateMyPasswordRejectsWrongCurrentPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	user := firstAccessUser(t)

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"errada","newPassword":"NovaSenha1!"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "senha atual incorreta", resp.Message)
	require.True(t, user.MustChangePassword)
}

func TestUpdateMyPasswordReportsAllPolicyViolations(t *testing.T) {
	h, _ := newTestHandler(t)
	user := firstAccessUser(t)

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"Provisoria1!","newPassword":"abc12345"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "senha fraca")
	// todas as regras violadas aparecem de uma vez
	require.Contains(t, resp.Message, "maiúscula")
	require.Contains(t, resp.Message, "símbolo")
}

func TestUpdateMyPasswordRejectsSameAsCurrent(t *testing.T) {
	h, _ := newTestHandler(t)
	user := firstAccessUser(t)

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"Provisoria1!","newPassword":"Provisoria1!"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "a nova senha não pode ser igual à atual", resp.Message)
}

func TestUpdateMyPasswordRejectsRecentlyUsedPassword(t *testing.T) {
	h, mock := newTestHandler(t)
	user := firstAccessUser(t)

	mock.ExpectQuery("SELECT password_hash FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).
			AddRow(hashForTest(t, "NovaSenha1!")))

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"Provisoria1!","newPassword":"NovaSenha1!"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "a nova senha já foi utilizada recentemente, escolha outra", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordWasPreviouslyUsedOnlyChecksRetainedHistory(t *testing.T) {
	h, mock := newTestHandler(t)
	user := firstAccessUser(t)

	// o histórico devolvido já está limitado às 5 trocas mais recentes; uma
	// senha da sexta troca para trás não aparece aqui e volta a ser aceita
	rows := sqlmock.NewRows([]string{"password_hash"})
	for _, old := range []string{"Antiga1!aa", "Antiga2!bb", "Antiga3!cc", "Antiga4!dd", "Antiga5!ee"} {
		rows.AddRow(hashForTest(t, old))
	}
	mock.ExpectQuery("SELECT password_hash FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnRows(rows)

	reused, err := h.passwordWasPreviouslyUsed(user, "Antiga6!ff")
	require.NoError(t, err)
	require.False(t, reused)

	mock.ExpectQuery("SELECT password_hash FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(hashForTest(t, "Antiga5!ee")))

	reused, err = h.passwordWasPreviouslyUsed(user, "Antiga5!ee")
	require.NoError(t, err)
	require.True(t, reused)
}

func TestUpdateMyPasswordSuccess(t *testing.T) {
	h, mock := newTestHandler(t)
	user := firstAccessUser(t)
	oldHash := user.PasswordHash

	mock.ExpectQuery("SELECT password_hash FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).
			AddRow(hashForTest(t, "OutraSenha9#")))
	mock.ExpectQuery("UPDATE users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "version"}).AddRow(testTime(), int32(2)))
	mock.ExpectExec("INSERT INTO password_history").
		WithArgs(user.ID, oldHash).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"Provisoria1!","newPassword":"NovaSenha1!"}`))

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	// a conta sai do estado de troca obrigatória na mesma sessão
	require.False(t, user.MustChangePassword)
	require.NotNil(t, user.LastPasswordChangeAt)
	require.NotEqual(t, oldHash, user.PasswordHash)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "strength")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMyPasswordAsksRetryOnConcurrentChange(t *testing.T) {
	h, mock := newTestHandler(t)
	user := firstAccessUser(t)

	mock.ExpectQuery("SELECT password_hash FROM password_history").
		WithArgs(user.ID, domain.PasswordHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}))
	// outra troca chegou antes e incrementou a versão da linha
	mock.ExpectQuery("UPDATE users").
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	h.UpdateMyPassword(rec, updatePasswordRequest(t, user, `{"oldPassword":"Provisoria1!","newPassword":"NovaSenha1!"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "não foi possível atualizar a senha, tente novamente", resp.Message)
}
