package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func (h *Handler) currentUser(r *http.Request) (*domain.User, error) {
	if user, ok := r.Context().Value(MyInfoCtx).(*domain.User); ok {
		return user, nil
	}

	subString := r.Context().Value(SubCtxKey).(string)
	sub, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		return nil, err
	}

	return h.repository.GetUserByID(sub)
}

func (h *Handler) CreateDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		SchoolID    int64     `json:"schoolId" validate:"required"`
		Department  string    `json:"department" validate:"required"`
		Priority    string    `json:"priority" validate:"required,oneof=baixa media alta"`
		DueAt       time.Time `json:"dueAt" validate:"required"`
		AssigneeID  *int64    `json:"assigneeId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.currentUser(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	demand := &domain.Demand{
		Title:       req.Title,
		Description: req.Description,
		SchoolID:    req.SchoolID,
		Department:  req.Department,
		Priority:    domain.DemandPriority(req.Priority),
		Status:      domain.DemandStatusPending,
		DueAt:       req.DueAt,
		CreatorID:   user.ID,
		AssigneeID:  req.AssigneeID,
	}

	if err := h.repository.CreateDemand(demand); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "demanda criada com sucesso", demand)
}

// GetDemands lista conforme a visibilidade do papel: administrador e
// supervisor enxergam tudo, gestor enxerga a própria escola e servidor
// enxerga as demandas que criou ou pelas quais é responsável.
func (h *Handler) GetDemands(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var demands []*domain.Demand

	switch user.Role {
	case domain.RoleAdministrator, domain.RoleSupervisor:
		demands, err = h.repository.GetAllDemands()
	case domain.RoleSchoolManager:
		if user.SchoolID == nil {
			h.errorResponse(w, r, "gestor sem escola vinculada")
			return
		}
		demands, err = h.repository.GetDemandsBySchoolID(*user.SchoolID)
	default:
		demands, err = h.repository.GetDemandsByUserID(user.ID)
	}

	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "lista de demandas obtida com sucesso", demands)
}

func (h *Handler) GetDemand(w http.ResponseWriter, r *http.Request) {
	demand := r.Context().Value(DemandInfoCtx).(*domain.Demand)
	h.successResponse(w, r, "demanda obtida com sucesso", demand)
}

func (h *Handler) UpdateDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Department  *string    `json:"department"`
		Priority    *string    `json:"priority" validate:"omitempty,oneof=baixa media alta"`
		DueAt       *time.Time `json:"dueAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	demand := r.Context().Value(DemandInfoCtx).(*domain.Demand)

	if req.Title != nil {
		demand.Title = *req.Title
	}
	if req.Description != nil {
		demand.Description = *req.Description
	}
	if req.Department != nil {
		demand.Department = *req.Department
	}
	if req.Priority != nil {
		demand.Priority = domain.DemandPriority(*req.Priority)
	}
	if req.DueAt != nil {
		demand.DueAt = *req.DueAt
	}

	if err := h.repository.UpdateDemand(demand); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atualizar a demanda, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "demanda atualizada com sucesso", demand)
}

func (h *Handler) UpdateDemandStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=pendente em_andamento concluida cancelada"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	demand := r.Context().Value(DemandInfoCtx).(*domain.Demand)

	user, err := h.currentUser(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// só quem participa da demanda (ou supervisiona) muda o andamento
	isParticipant := demand.CreatorID == user.ID ||
		(demand.AssigneeID != nil && *demand.AssigneeID == user.ID)
	isSupervisor := user.Role == domain.RoleAdministrator || user.Role == domain.RoleSupervisor
	if !isParticipant && !isSupervisor {
		h.errorResponse(w, r, "permissão insuficiente")
		return
	}

	demand.Status = domain.DemandStatus(req.Status)

	if err := h.repository.UpdateDemand(demand); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atualizar o status, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "status da demanda atualizado com sucesso", demand)
}

// AssignDemand define o responsável e o avisa por e-mail.
func (h *Handler) AssignDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssigneeID int64 `json:"assigneeId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignee, err := h.repository.GetUserByID(req.AssigneeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "responsável não encontrado")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	demand := r.Context().Value(DemandInfoCtx).(*domain.Demand)
	demand.AssigneeID = &assignee.ID

	if err := h.repository.UpdateDemand(demand); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atribuir a demanda, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := domain.MailMessage{
		Type: "demand_assigned",
		To:   assignee.Email,
		Data: domain.DemandAssignedMailData{
			Name:        assignee.Name,
			DemandTitle: demand.Title,
			DueAt:       demand.DueAt.Format("02/01/2006"),
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "demanda atribuída com sucesso", demand)
}

func (h *Handler) DeleteDemand(w http.ResponseWriter, r *http.Request) {
	demand := r.Context().Value(DemandInfoCtx).(*domain.Demand)

	if err := h.repository.DeleteDemand(demand.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "demanda excluída com sucesso", nil)
}
