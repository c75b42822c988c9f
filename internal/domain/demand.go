package domain

import "time"

type DemandStatus string

const (
	DemandStatusPending    DemandStatus = "pendente"
	DemandStatusInProgress DemandStatus = "em_andamento"
	DemandStatusCompleted  DemandStatus = "concluida"
	DemandStatusCancelled  DemandStatus = "cancelada"
)

type DemandPriority string

const (
	DemandPriorityLow    DemandPriority = "baixa"
	DemandPriorityMedium DemandPriority = "media"
	DemandPriorityHigh   DemandPriority = "alta"
)

type Demand struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SchoolID    int64          `json:"schoolId"`
	Department  string         `json:"department"`
	Priority    DemandPriority `json:"priority"`
	Status      DemandStatus   `json:"status"`
	DueAt       time.Time      `json:"dueAt"`
	CreatorID   int64          `json:"creatorId"`
	AssigneeID  *int64         `json:"assigneeId"`
	CreatedAt   time.Time      `json:"createdAt"`
	Version     int32          `json:"-"`
}

// IsOpen indica se a demanda ainda deve gerar lembretes de vencimento.
func (d *Demand) IsOpen() bool {
	return d.Status != DemandStatusCompleted && d.Status != DemandStatusCancelled
}
