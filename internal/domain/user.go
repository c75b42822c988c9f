package domain

import (
	"time"
)

type Role string

const (
	RoleAdministrator Role = "administrador"
	RoleSupervisor    Role = "supervisor"
	RoleSchoolManager Role = "gestor"
	RoleStandard      Role = "servidor"
)

// InterestedRoles são os papéis que recebem lembretes de vencimento de
// todas as demandas, independentemente de serem criadores ou responsáveis.
var InterestedRoles = []Role{RoleAdministrator, RoleSupervisor}

type User struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Role                 Role       `json:"role"`
	SchoolID             *int64     `json:"schoolId"`
	MustChangePassword   bool       `json:"mustChangePassword"`
	IsActive             bool       `json:"isActive"`
	LastPasswordChangeAt *time.Time `json:"lastPasswordChangeAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	Version              int32      `json:"-"`
}

// PasswordHistoryLimit limita o histórico às 5 senhas anteriores mais recentes.
const PasswordHistoryLimit = 5
