package repository

import (
	"context"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT name, email, password_hash, role, school_id, must_change_password, is_active, last_password_change_at, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.SchoolID, &user.MustChangePassword, &user.IsActive, &user.LastPasswordChangeAt, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail busca pelo e-mail já normalizado (minúsculo e sem espaços).
func (r *Repository) GetUserByEmail(email string) (*domain.User, error) {
	query := `
		SELECT id, name, password_hash, role, school_id, must_change_password, is_active, last_password_change_at, created_at, version
		FROM users WHERE email = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.Name, &user.PasswordHash, &user.Role, &user.SchoolID, &user.MustChangePassword, &user.IsActive, &user.LastPasswordChangeAt, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser usa a coluna version como trava otimista: se outra requisição
// alterou o usuário depois da leitura, o UPDATE não encontra a linha e
// retorna sql.ErrNoRows, e o chamador pede para tentar de novo.
func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			school_id = $5,
			must_change_password = $6,
			is_active = $7,
			last_password_change_at = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.SchoolID, user.MustChangePassword, user.IsActive, user.LastPasswordChangeAt, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, school_id, must_change_password, is_active, last_password_change_at, created_at, version
		FROM users
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.SchoolID, &user.MustChangePassword, &user.IsActive, &user.LastPasswordChangeAt, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// GetActiveUsersByRoles lista os usuários ativos com algum dos papéis
// informados. Usado pelo agendador para montar o conjunto de interessados.
func (r *Repository) GetActiveUsersByRoles(roleList []domain.Role) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, school_id, must_change_password, is_active, last_password_change_at, created_at, version
		FROM users
		WHERE is_active = TRUE AND role = ANY($1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	names := make([]string, len(roleList))
	for i, role := range roleList {
		names[i] = string(role)
	}

	rows, err := r.dbpool.QueryContext(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.SchoolID, &user.MustChangePassword, &user.IsActive, &user.LastPasswordChangeAt, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) DeleteUser(id int64) error {
	query := `
		DELETE FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (name, email, password_hash, role, school_id, must_change_password, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{user.Name, user.Email, user.PasswordHash, user.Role, user.SchoolID, user.MustChangePassword, user.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// GetPasswordHistory devolve os hashes das últimas senhas do usuário,
// do mais recente para o mais antigo, limitado ao teto do histórico.
// O hash atual do usuário não aparece aqui, apenas os anteriores.
func (r *Repository) GetPasswordHistory(userID int64) ([]string, error) {
	query := `
		SELECT password_hash
		FROM password_history
		WHERE user_id = $1
		ORDER BY changed_at DESC, id DESC
		LIMIT $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID, domain.PasswordHistoryLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make([]string, 0, domain.PasswordHistoryLimit)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hashes, nil
}

// ArchivePasswordHash guarda o hash anterior no histórico e descarta as
// entradas que excedem o teto, da mais antiga para a mais nova.
func (r *Repository) ArchivePasswordHash(userID int64, oldHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	insertQuery := `
		INSERT INTO password_history (user_id, password_hash)
		VALUES ($1, $2)
	`
	if _, err := r.dbpool.ExecContext(ctx, insertQuery, userID, oldHash); err != nil {
		return err
	}

	trimQuery := `
		DELETE FROM password_history
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM password_history
			WHERE user_id = $1
			ORDER BY changed_at DESC, id DESC
			LIMIT $2
		)
	`
	if _, err := r.dbpool.ExecContext(ctx, trimQuery, userID, domain.PasswordHistoryLimit); err != nil {
		return err
	}

	return nil
}
