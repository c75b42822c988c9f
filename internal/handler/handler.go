package handler

import (
	"github.com/go-chi/chi/v5"
	ptBR "github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	pt := ptBR.New()
	uni := ut.New(pt, pt)
	trans, _ := uni.GetTranslator("pt_BR")
	if err := ptBRTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// autenticação
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/register", h.Register)
		r.Post("/password-strength", h.PasswordStrength)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// as rotas abaixo exigem login
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)

			// a troca de senha fica fora do bloqueio de primeiro acesso,
			// senão o usuário nunca consegue sair do estado restrito
			r.Patch("/password", h.UpdateMyPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.requirePasswordChanged)
				r.Get("/", h.GetMyInfo)
				r.Get("/notifications", h.GetMyNotifications)
				r.Patch("/notifications/{id}/read", h.MarkMyNotificationRead)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requirePasswordChanged)

			r.Route("/users", func(r chi.Router) {
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Post("/", h.CreateUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator, domain.RoleSupervisor})).Get("/", h.GetAllUserInfo)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.userInfo)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator, domain.RoleSupervisor})).Get("/", h.GetUserInfo)
					r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/", h.UpdateUser)
					r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/", h.DeleteUser)
					r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/password", h.ResetUserPassword)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/approve", h.ApproveUser)
				})
			})

			r.Route("/schools", func(r chi.Router) {
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Post("/", h.CreateSchool)
				r.Get("/", h.GetAllSchools)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.schoolInfo)
					r.Get("/", h.GetSchool)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/", h.UpdateSchool)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/", h.DeleteSchool)
				})
			})

			r.Route("/demands", func(r chi.Router) {
				r.Post("/", h.CreateDemand)
				r.Get("/", h.GetDemands)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.demandInfo)
					r.Get("/", h.GetDemand)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator, domain.RoleSupervisor})).Patch("/", h.UpdateDemand)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator, domain.RoleSupervisor})).Delete("/", h.DeleteDemand)
					r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator, domain.RoleSupervisor})).Patch("/assignee", h.AssignDemand)
					r.Patch("/status", h.UpdateDemandStatus)
				})
			})
		})
	})
}
