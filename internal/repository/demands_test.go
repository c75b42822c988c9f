package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

var demandTestColumns = []string{"id", "title", "description", "school_id", "department", "priority", "status", "due_at", "creator_id", "assignee_id", "created_at", "version"}

func TestGetDemandsDueBetweenExcludesClosedStatuses(t *testing.T) {
	repo, mock := newTestRepository(t)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4).Add(-time.Nanosecond)

	row := []driver.Value{int64(1), "Reforma do laboratório", "", int64(3), "infraestrutura", "alta", "pendente", start.Add(30 * time.Hour), int64(10), nil, start, int32(1)}
	mock.ExpectQuery("SELECT (.+) FROM demands WHERE due_at >= (.+) AND due_at <= (.+) AND status NOT IN").
		WithArgs(start, end, domain.DemandStatusCompleted, domain.DemandStatusCancelled).
		WillReturnRows(sqlmock.NewRows(demandTestColumns).AddRow(row...))

	demands, err := repo.GetDemandsDueBetween(start, end)
	require.NoError(t, err)
	require.Len(t, demands, 1)
	require.Equal(t, int64(1), demands[0].ID)
	require.True(t, demands[0].IsOpen())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDemandVersionConflict(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("UPDATE demands").
		WillReturnError(sql.ErrNoRows)

	demand := &domain.Demand{ID: 1, Version: 1}
	require.ErrorIs(t, repo.UpdateDemand(demand), sql.ErrNoRows)
}

func TestGetDemandsByUserIDMatchesCreatorOrAssignee(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM demands WHERE creator_id = (.+) OR assignee_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(demandTestColumns))

	demands, err := repo.GetDemandsByUserID(5)
	require.NoError(t, err)
	require.Empty(t, demands)
	require.NoError(t, mock.ExpectationsWereMet())
}
