package repository

import (
	"context"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

const demandColumns = `
	id,
	title,
	description,
	school_id,
	department,
	priority,
	status,
	due_at,
	creator_id,
	assignee_id,
	created_at,
	version
`

func scanDemand(scan func(dest ...any) error) (*domain.Demand, error) {
	demand := &domain.Demand{}
	dst := []any{
		&demand.ID,
		&demand.Title,
		&demand.Description,
		&demand.SchoolID,
		&demand.Department,
		&demand.Priority,
		&demand.Status,
		&demand.DueAt,
		&demand.CreatorID,
		&demand.AssigneeID,
		&demand.CreatedAt,
		&demand.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return demand, nil
}

func (r *Repository) queryDemands(query string, args ...any) ([]*domain.Demand, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	demands := []*domain.Demand{}
	for rows.Next() {
		demand, err := scanDemand(rows.Scan)
		if err != nil {
			return nil, err
		}
		demands = append(demands, demand)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return demands, nil
}

func (r *Repository) CreateDemand(demand *domain.Demand) error {
	query := `
		INSERT INTO demands (title, description, school_id, department, priority, status, due_at, creator_id, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		demand.Title,
		demand.Description,
		demand.SchoolID,
		demand.Department,
		demand.Priority,
		demand.Status,
		demand.DueAt,
		demand.CreatorID,
		demand.AssigneeID,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&demand.ID, &demand.CreatedAt, &demand.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDemandByID(id int64) (*domain.Demand, error) {
	query := `
		SELECT ` + demandColumns + `
		FROM demands
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanDemand(r.dbpool.QueryRowContext(ctx, query, id).Scan)
}

func (r *Repository) GetAllDemands() ([]*domain.Demand, error) {
	query := `
		SELECT ` + demandColumns + `
		FROM demands
		ORDER BY due_at ASC
	`

	return r.queryDemands(query)
}

func (r *Repository) GetDemandsBySchoolID(schoolID int64) ([]*domain.Demand, error) {
	query := `
		SELECT ` + demandColumns + `
		FROM demands
		WHERE school_id = $1
		ORDER BY due_at ASC
	`

	return r.queryDemands(query, schoolID)
}

func (r *Repository) GetDemandsByUserID(userID int64) ([]*domain.Demand, error) {
	query := `
		SELECT ` + demandColumns + `
		FROM demands
		WHERE creator_id = $1 OR assignee_id = $1
		ORDER BY due_at ASC
	`

	return r.queryDemands(query, userID)
}

// GetDemandsDueBetween lista as demandas abertas com vencimento dentro da
// janela informada. Demandas concluídas ou canceladas nunca geram lembrete.
func (r *Repository) GetDemandsDueBetween(start, end time.Time) ([]*domain.Demand, error) {
	query := `
		SELECT ` + demandColumns + `
		FROM demands
		WHERE due_at >= $1 AND due_at <= $2 AND status NOT IN ($3, $4)
		ORDER BY due_at ASC
	`

	return r.queryDemands(query, start, end, domain.DemandStatusCompleted, domain.DemandStatusCancelled)
}

func (r *Repository) UpdateDemand(demand *domain.Demand) error {
	query := `
		UPDATE demands
		SET
			title = $1,
			description = $2,
			department = $3,
			priority = $4,
			status = $5,
			due_at = $6,
			assignee_id = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		demand.Title,
		demand.Description,
		demand.Department,
		demand.Priority,
		demand.Status,
		demand.DueAt,
		demand.AssigneeID,
		demand.ID,
		demand.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&demand.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteDemand(id int64) error {
	query := `
		DELETE FROM demands WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
