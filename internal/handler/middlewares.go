package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

const authCookieName = "__demanda_tracker_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("requisição processada", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // o slog embaralha o stack trace
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// o token fica num cookie http-only
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "usuário não autenticado")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// token adulterado ou expirado é tratado igual a não autenticado
		tokenString := cookie.Value
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, "sessão inválida, faça login novamente")
			return
		}

		// token revogado no logout também não vale mais
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
		defer cancel()

		revoked, err := h.redisClient.Exists(ctx, revokedTokenKey(claims.ID)).Result()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if revoked > 0 {
			h.errorResponse(w, r, "sessão inválida, faça login novamente")
			return
		}

		reqCtx := r.Context()
		reqCtx = context.WithValue(reqCtx, RoleCtxKey, claims.Role)
		reqCtx = context.WithValue(reqCtx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(reqCtx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		myInfo, err := h.repository.GetUserByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "usuário não encontrado")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePasswordChanged bloqueia contas em primeiro acesso (ou com senha
// resetada) em qualquer rota que não seja a própria troca de senha ou o
// logout. A flag é relida do banco a cada requisição de propósito: estado
// de segurança não passa por cache.
func (h *Handler) requirePasswordChanged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(MyInfoCtx).(*domain.User)
		if !ok {
			subString := r.Context().Value(SubCtxKey).(string)
			sub, err := strconv.ParseInt(subString, 10, 64)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}

			user, err = h.repository.GetUserByID(sub)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, "usuário não encontrado")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}
		}

		if user.MustChangePassword {
			h.errorResponse(w, r, "é necessário trocar a senha antes de continuar")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleCtx := r.Context().Value(RoleCtxKey).(string)
			role := domain.Role(roleCtx)
			if !slices.Contains(roles, role) {
				h.errorResponse(w, r, "permissão insuficiente")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDParam := chi.URLParam(r, "id")
		userID, err := strconv.ParseInt(userIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "ID de usuário inválido")
			return
		}

		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "usuário não encontrado")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Email == h.config.InitialAdmin.Email {
			h.errorResponse(w, r, "não é permitido alterar o administrador inicial")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) schoolInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		schoolIDParam := chi.URLParam(r, "id")
		schoolID, err := strconv.ParseInt(schoolIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "ID de escola inválido")
			return
		}

		school, err := h.repository.GetSchoolByID(schoolID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "escola não encontrada")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), SchoolInfoCtx, school)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) demandInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		demandIDParam := chi.URLParam(r, "id")
		demandID, err := strconv.ParseInt(demandIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "ID de demanda inválido")
			return
		}

		demand, err := h.repository.GetDemandByID(demandID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "demanda não encontrada")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), DemandInfoCtx, demand)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
