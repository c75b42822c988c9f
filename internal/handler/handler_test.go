package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/repository"
)

// newTestHandler monta o handler sobre um banco simulado; rabbitmq e redis
// ficam nulos, então só servem para rotas que não tocam fila nem cache.
func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.JWT.Secret = "segredo-de-teste"
	cfg.JWT.Expiration = 3600
	cfg.Redis.OperationExpiration = 5
	cfg.InitialAdmin.Email = "admin@seduc.gov.br"

	h, err := NewHandler(cfg, repository.NewRepository(cfg, db), nil, nil)
	require.NoError(t, err)

	return h, mock
}

func testTime() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
