package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

// Store é o recorte do repositório usado pelo agendador de lembretes.
type Store interface {
	GetDemandsDueBetween(start, end time.Time) ([]*domain.Demand, error)
	GetActiveUsersByRoles(roles []domain.Role) ([]*domain.User, error)
	CreateNotification(notification *domain.Notification) error
}

// LivePublisher entrega a notificação em tempo real para sessões abertas.
// A entrega é melhor esforço: falha aqui não desfaz a notificação persistida.
type LivePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type Summary struct {
	DemandsScanned       int
	NotificationsCreated int
}

type Scheduler struct {
	cfg   *config.Config
	store Store
	live  LivePublisher
	loc   *time.Location
}

func New(cfg *config.Config, store Store, live LivePublisher) (*Scheduler, error) {
	// o fuso é fixo na configuração para que o disparo diário não dependa
	// do fuso da máquina hospedeira
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("fuso horário inválido %q: %w", cfg.Scheduler.Timezone, err)
	}

	return &Scheduler{
		cfg:   cfg,
		store: store,
		live:  live,
		loc:   loc,
	}, nil
}

// Start dispara Run uma vez por dia no horário configurado, até o contexto
// ser cancelado. Um ciclo com erro é apenas registrado; o próximo disparo
// acontece normalmente.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.nextTrigger(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			summary, err := s.Run(time.Now())
			if err != nil {
				slog.Error("ciclo de lembretes abortado", "error", err)
				continue
			}
			slog.Info("ciclo de lembretes concluído",
				"demandas", summary.DemandsScanned,
				"notificacoes", summary.NotificationsCreated,
			)
		}
	}
}

func (s *Scheduler) nextTrigger(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.Scheduler.TriggerHour, 0, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run executa um ciclo de lembretes a partir do instante informado. É um
// método comum justamente para que testes e disparos manuais não dependam
// do timer.
func (s *Scheduler) Run(now time.Time) (Summary, error) {
	summary := Summary{}

	windowStart, windowEnd := s.reminderWindow(now)

	demands, err := s.store.GetDemandsDueBetween(windowStart, windowEnd)
	if err != nil {
		return summary, fmt.Errorf("falha ao buscar demandas da janela: %w", err)
	}
	summary.DemandsScanned = len(demands)

	interested, err := s.store.GetActiveUsersByRoles(domain.InterestedRoles)
	if err != nil {
		return summary, fmt.Errorf("falha ao buscar usuários interessados: %w", err)
	}

	for _, demand := range demands {
		urgency := classifyUrgency(s.daysRemaining(now, demand.DueAt))
		message := reminderMessage(urgency, demand)

		for recipientID := range s.recipientSet(demand, interested) {
			notification := &domain.Notification{
				RecipientID: recipientID,
				DemandID:    demand.ID,
				Urgency:     urgency,
				Message:     message,
			}

			if err := s.store.CreateNotification(notification); err != nil {
				// degrada apenas esta notificação, o restante do lote segue
				slog.Error("falha ao criar notificação de lembrete",
					"demandId", demand.ID, "recipientId", recipientID, "error", err)
				continue
			}
			summary.NotificationsCreated++

			s.pushLive(notification)
		}
	}

	return summary, nil
}

// reminderWindow vai do início do dia atual ao fim do terceiro dia à frente,
// sempre no fuso fixo do agendador.
func (s *Scheduler) reminderWindow(now time.Time) (time.Time, time.Time) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, s.cfg.Scheduler.WindowDays+1).Add(-time.Nanosecond)
	return start, end
}

// daysRemaining conta dias de calendário no fuso fixo (piso, sem arredondar).
func (s *Scheduler) daysRemaining(now, dueAt time.Time) int {
	localNow := now.In(s.loc)
	localDue := dueAt.In(s.loc)

	nowDay := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, s.loc)
	dueDay := time.Date(localDue.Year(), localDue.Month(), localDue.Day(), 0, 0, 0, 0, s.loc)

	return int(dueDay.Sub(nowDay).Hours() / 24)
}

func classifyUrgency(daysRemaining int) domain.NotificationUrgency {
	switch {
	case daysRemaining <= 0:
		return domain.UrgencyDueToday
	case daysRemaining == 1:
		return domain.UrgencyDueTomorrow
	default:
		return domain.UrgencyDueSoon
	}
}

// recipientSet une criador, responsável e papéis interessados; a união por
// mapa garante no máximo uma notificação por destinatário por ciclo.
func (s *Scheduler) recipientSet(demand *domain.Demand, interested []*domain.User) map[int64]struct{} {
	recipients := map[int64]struct{}{
		demand.CreatorID: {},
	}
	if demand.AssigneeID != nil {
		recipients[*demand.AssigneeID] = struct{}{}
	}
	for _, user := range interested {
		recipients[user.ID] = struct{}{}
	}
	return recipients
}
