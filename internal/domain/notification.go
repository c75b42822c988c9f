package domain

import "time"

type NotificationUrgency string

const (
	UrgencyDueToday    NotificationUrgency = "due_today"
	UrgencyDueTomorrow NotificationUrgency = "due_tomorrow"
	UrgencyDueSoon     NotificationUrgency = "due_soon"
)

type Notification struct {
	ID          int64               `json:"id"`
	RecipientID int64               `json:"recipientId"`
	DemandID    int64               `json:"demandId"`
	Urgency     NotificationUrgency `json:"urgency"`
	Message     string              `json:"message"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"createdAt"`
}
