package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const loginEmailColumns = "id, name, password_hash, role, school_id, must_change_password, is_active, last_password_change_at, created_at, version"

func hashForTest(t *testing.T, password string) string {
	t.Helper()

	// custo mínimo só para os testes não pagarem o preço do custo padrão
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func emailRows(hash string, role string, isActive, mustChange bool) *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(loginEmailColumns, ", ")).
		AddRow(int64(7), "Maria Silva", hash, role, nil, mustChange, isActive, nil, testTime(), int32(1))
}

func TestLoginDoesNotRevealWhichFieldFailed(t *testing.T) {
	hash := hashForTest(t, "Senha123!")

	h, mock := newTestHandler(t)

	// e-mail desconhecido
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ninguem@seduc.gov.br").
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(`{"email":"ninguem@seduc.gov.br","password":"Senha123!"}`))
	unknownEmail := decodeResponse(t, rec)
	require.False(t, unknownEmail.Success)

	// e-mail conhecido com senha errada
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(emailRows(hash, "servidor", true, false))

	rec = httptest.NewRecorder()
	h.Login(rec, loginRequest(`{"email":"maria@seduc.gov.br","password":"SenhaErrada1!"}`))
	wrongPassword := decodeResponse(t, rec)
	require.False(t, wrongPassword.Success)

	// a mesma mensagem nos dois casos impede enumeração de e-mails
	require.Equal(t, unknownEmail.Message, wrongPassword.Message)
	require.Equal(t, "e-mail ou senha incorretos", wrongPassword.Message)
}

func TestLoginNormalizesEmail(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(emailRows(hashForTest(t, "Senha123!"), "servidor", true, false))

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(`{"email":"  Maria@Seduc.GOV.br ","password":"Senha123!"}`))

	require.True(t, decodeResponse(t, rec).Success)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginBlocksPendingApproval(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(emailRows(hashForTest(t, "Senha123!"), "servidor", false, false))

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(`{"email":"maria@seduc.gov.br","password":"Senha123!"}`))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "conta aguardando aprovação do administrador", resp.Message)
	require.Empty(t, rec.Result().Cookies())
}

func TestLoginSetsCookieAndReportsFirstAccess(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(emailRows(hashForTest(t, "Senha123!"), "servidor", true, true))

	rec := httptest.NewRecorder()
	h.Login(rec, loginRequest(`{"email":"maria@seduc.gov.br","password":"Senha123!"}`))

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	// o cliente usa a flag para redirecionar à troca obrigatória
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, data["mustChangePassword"])
	require.NotContains(t, data, "passwordHash")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, authCookieName, cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}

func TestLogoutWithoutSessionStillClearsCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, authCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
}

func TestRegisterRejectsDuplicateEmailBeforeInsert(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	body := `{"name":"Maria Silva","email":"maria@seduc.gov.br","password":"Abc123!@","role":"servidor"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "e-mail já cadastrado", resp.Message)
	// nenhum INSERT pode ter sido tentado
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCreatesInactiveAccount(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("maria@seduc.gov.br").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(7), testTime(), int32(1)))

	body := `{"name":"Maria Silva","email":"Maria@Seduc.gov.br","password":"Abc123!@","role":"servidor"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	// a conta nasce inativa e sem troca obrigatória: a senha foi escolhida
	// pelo próprio usuário
	require.Equal(t, false, data["isActive"])
	require.Equal(t, false, data["mustChangePassword"])
	require.Equal(t, "maria@seduc.gov.br", data["email"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordStrengthEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/password-strength", strings.NewReader(`{"password":"abc12345"}`))
	rec := httptest.NewRecorder()
	h.PasswordStrength(rec, req)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "score")

	violations, ok := data["violations"].([]any)
	require.True(t, ok)
	require.Len(t, violations, 2)
}
