package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func (h *Handler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required"`
		INEPCode string `json:"inepCode" validate:"required"`
		Region   string `json:"region" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	school := &domain.School{
		Name:     req.Name,
		INEPCode: req.INEPCode,
		Region:   req.Region,
	}

	if err := h.repository.CreateSchool(school); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "schools_inep_code_key":
			h.badRequest(w, r, errors.New("código INEP já cadastrado"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "escola criada com sucesso", school)
}

func (h *Handler) GetAllSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.repository.GetAllSchools()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "lista de escolas obtida com sucesso", schools)
}

func (h *Handler) GetSchool(w http.ResponseWriter, r *http.Request) {
	school := r.Context().Value(SchoolInfoCtx).(*domain.School)
	h.successResponse(w, r, "escola obtida com sucesso", school)
}

func (h *Handler) UpdateSchool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		INEPCode *string `json:"inepCode"`
		Region   *string `json:"region"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	school := r.Context().Value(SchoolInfoCtx).(*domain.School)

	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.INEPCode != nil {
		school.INEPCode = *req.INEPCode
	}
	if req.Region != nil {
		school.Region = *req.Region
	}

	if err := h.repository.UpdateSchool(school); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "não foi possível atualizar a escola, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "escola atualizada com sucesso", school)
}

func (h *Handler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	school := r.Context().Value(SchoolInfoCtx).(*domain.School)

	if err := h.repository.DeleteSchool(school.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "escola excluída com sucesso", nil)
}
