package repository

import (
	"context"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func (r *Repository) CreateSchool(school *domain.School) error {
	query := `
		INSERT INTO schools (name, inep_code, region)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{school.Name, school.INEPCode, school.Region}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&school.ID, &school.CreatedAt, &school.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchoolByID(id int64) (*domain.School, error) {
	query := `
		SELECT name, inep_code, region, created_at, version
		FROM schools
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	school := &domain.School{
		ID: id,
	}

	dst := []any{&school.Name, &school.INEPCode, &school.Region, &school.CreatedAt, &school.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return school, nil
}

func (r *Repository) GetAllSchools() ([]*domain.School, error) {
	query := `
		SELECT id, name, inep_code, region, created_at, version
		FROM schools
		ORDER BY name ASC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schools := []*domain.School{}
	for rows.Next() {
		school := &domain.School{}
		dst := []any{&school.ID, &school.Name, &school.INEPCode, &school.Region, &school.CreatedAt, &school.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schools = append(schools, school)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schools, nil
}

func (r *Repository) UpdateSchool(school *domain.School) error {
	query := `
		UPDATE schools
		SET
			name = $1,
			inep_code = $2,
			region = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{school.Name, school.INEPCode, school.Region, school.ID, school.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&school.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSchool(id int64) error {
	query := `
		DELETE FROM schools WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
