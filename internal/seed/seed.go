package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/repository"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"
)

var seedSchools = []domain.School{
	{Name: "EMEF Monteiro Lobato", INEPCode: "35012345", Region: "Centro"},
	{Name: "EMEF Cecília Meireles", INEPCode: "35023456", Region: "Norte"},
	{Name: "EMEI Vinicius de Moraes", INEPCode: "35034567", Region: "Sul"},
	{Name: "EMEF Paulo Freire", INEPCode: "35045678", Region: "Leste"},
	{Name: "EMEF Anísio Teixeira", INEPCode: "35056789", Region: "Oeste"},
}

var seedDepartments = []string{
	"Manutenção", "Secretaria", "Transporte", "Alimentação", "Tecnologia",
}

var seedDemandTitles = []string{
	"Conserto do portão principal",
	"Reposição de merenda escolar",
	"Troca de lâmpadas do pátio",
	"Manutenção do laboratório de informática",
	"Reforma do telhado da quadra",
	"Atualização do cadastro de alunos",
	"Dedetização do prédio",
	"Compra de material de limpeza",
}

var seedPriorities = []domain.DemandPriority{
	domain.DemandPriorityLow,
	domain.DemandPriorityMedium,
	domain.DemandPriorityHigh,
}

// Run popula o banco com dados de desenvolvimento: escolas fixas, usuários
// aleatórios com a senha do seed e demandas com vencimentos espalhados em
// volta da janela de lembretes.
func Run(cfg *config.Config, repo *repository.Repository, userCount, demandCount int) {
	schools := make([]*domain.School, 0, len(seedSchools))
	for i := range seedSchools {
		school := seedSchools[i]
		if err := repo.CreateSchool(&school); err != nil {
			slog.Error("falha ao criar escola do seed", "name", school.Name, "error", err)
			continue
		}
		schools = append(schools, &school)
	}

	if len(schools) == 0 {
		slog.Error("nenhuma escola criada, seed abortado")
		return
	}

	users := make([]*domain.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, "seduc.gov.br")
		if err != nil {
			slog.Error("falha ao gerar usuário do seed", "error", err)
			continue
		}
		if user.Role == domain.RoleSchoolManager {
			school := schools[rand.Intn(len(schools))]
			user.SchoolID = &school.ID
		}
		if err := repo.CreateUser(user); err != nil {
			slog.Error("falha ao criar usuário do seed", "email", user.Email, "error", err)
			continue
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		slog.Error("nenhum usuário criado, seed abortado")
		return
	}

	for i := 0; i < demandCount; i++ {
		creator := users[rand.Intn(len(users))]
		school := schools[rand.Intn(len(schools))]

		demand := &domain.Demand{
			Title:       seedDemandTitles[rand.Intn(len(seedDemandTitles))],
			Description: "Demanda gerada pelo seed " + utils.GenerateRandomID(4, 4),
			SchoolID:    school.ID,
			Department:  seedDepartments[rand.Intn(len(seedDepartments))],
			Priority:    seedPriorities[rand.Intn(len(seedPriorities))],
			Status:      domain.DemandStatusPending,
			// de 2 dias atrás até 6 dias à frente, para cobrir dentro e
			// fora da janela de lembretes
			DueAt:     time.Now().AddDate(0, 0, rand.Intn(9)-2),
			CreatorID: creator.ID,
		}

		if rand.Intn(2) == 0 {
			assignee := users[rand.Intn(len(users))]
			demand.AssigneeID = &assignee.ID
		}

		if err := repo.CreateDemand(demand); err != nil {
			slog.Error("falha ao criar demanda do seed", "title", demand.Title, "error", err)
		}
	}

	slog.Info("seed concluído", "schools", len(schools), "users", len(users), "demands", demandCount)
}
