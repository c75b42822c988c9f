package scheduler

import (
	"fmt"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func reminderMessage(urgency domain.NotificationUrgency, demand *domain.Demand) string {
	switch urgency {
	case domain.UrgencyDueToday:
		return fmt.Sprintf("A demanda %q vence hoje.", demand.Title)
	case domain.UrgencyDueTomorrow:
		return fmt.Sprintf("A demanda %q vence amanhã.", demand.Title)
	default:
		return fmt.Sprintf("A demanda %q vence em breve (%s).", demand.Title, demand.DueAt.Format("02/01/2006"))
	}
}
