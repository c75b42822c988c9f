package handler

import (
	"context"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

var demandColumns = []string{"id", "title", "description", "school_id", "department", "priority", "status", "due_at", "creator_id", "assignee_id", "created_at", "version"}

func demandRow(id int64, creatorID int64) []driver.Value {
	return []driver.Value{id, "Reforma do laboratório", "", int64(3), "infraestrutura", "alta", "pendente", testTime().Add(48 * time.Hour), creatorID, nil, testTime(), int32(1)}
}

func getDemandsRequest(user *domain.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/demands", nil)
	ctx := context.WithValue(req.Context(), MyInfoCtx, user)
	return req.WithContext(ctx)
}

func TestGetDemandsVisibilityByRole(t *testing.T) {
	t.Run("supervisor enxerga todas as demandas", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectQuery("SELECT (.+) FROM demands ORDER BY due_at").
			WillReturnRows(sqlmock.NewRows(demandColumns).AddRow(demandRow(1, 10)...).AddRow(demandRow(2, 20)...))

		rec := httptest.NewRecorder()
		h.GetDemands(rec, getDemandsRequest(&domain.User{ID: 5, Role: domain.RoleSupervisor}))

		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)
		require.Len(t, resp.Data, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gestor enxerga apenas a própria escola", func(t *testing.T) {
		h, mock := newTestHandler(t)

		schoolID := int64(3)
		mock.ExpectQuery("SELECT (.+) FROM demands WHERE school_id").
			WithArgs(schoolID).
			WillReturnRows(sqlmock.NewRows(demandColumns).AddRow(demandRow(1, 10)...))

		rec := httptest.NewRecorder()
		h.GetDemands(rec, getDemandsRequest(&domain.User{ID: 5, Role: domain.RoleSchoolManager, SchoolID: &schoolID}))

		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gestor sem escola vinculada é recusado", func(t *testing.T) {
		h, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		h.GetDemands(rec, getDemandsRequest(&domain.User{ID: 5, Role: domain.RoleSchoolManager}))

		resp := decodeResponse(t, rec)
		require.False(t, resp.Success)
		require.Equal(t, "gestor sem escola vinculada", resp.Message)
	})

	t.Run("servidor enxerga só o que criou ou assumiu", func(t *testing.T) {
		h, mock := newTestHandler(t)

		mock.ExpectQuery("SELECT (.+) FROM demands WHERE creator_id = (.+) OR assignee_id").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(demandColumns).AddRow(demandRow(1, 5)...))

		rec := httptest.NewRecorder()
		h.GetDemands(rec, getDemandsRequest(&domain.User{ID: 5, Role: domain.RoleStandard}))

		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateDemandStatusRequiresParticipation(t *testing.T) {
	h, _ := newTestHandler(t)

	demand := &domain.Demand{ID: 1, Title: "Reforma", Status: domain.DemandStatusPending, CreatorID: 10}
	user := &domain.User{ID: 5, Role: domain.RoleStandard}

	req := httptest.NewRequest(http.MethodPatch, "/demands/1/status", strings.NewReader(`{"status":"em_andamento"}`))
	ctx := context.WithValue(req.Context(), DemandInfoCtx, demand)
	ctx = context.WithValue(ctx, MyInfoCtx, user)
	rec := httptest.NewRecorder()

	h.UpdateDemandStatus(rec, req.WithContext(ctx))

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "permissão insuficiente", resp.Message)
	// a demanda em memória não pode ter sido alterada
	require.Equal(t, domain.DemandStatusPending, demand.Status)
}

func TestUpdateDemandStatusByAssignee(t *testing.T) {
	h, mock := newTestHandler(t)

	assigneeID := int64(5)
	demand := &domain.Demand{ID: 1, Title: "Reforma", Status: domain.DemandStatusPending, CreatorID: 10, AssigneeID: &assigneeID, Version: 1}
	user := &domain.User{ID: assigneeID, Role: domain.RoleStandard}

	mock.ExpectQuery("UPDATE demands").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))

	req := httptest.NewRequest(http.MethodPatch, "/demands/1/status", strings.NewReader(`{"status":"concluida"}`))
	ctx := context.WithValue(req.Context(), DemandInfoCtx, demand)
	ctx = context.WithValue(ctx, MyInfoCtx, user)
	rec := httptest.NewRecorder()

	h.UpdateDemandStatus(rec, req.WithContext(ctx))

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, domain.DemandStatusCompleted, demand.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
