package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

// pushLive envia a notificação para o canal da sessão do destinatário.
// Fire-and-forget: erro aqui só vira log.
func (s *Scheduler) pushLive(notification *domain.Notification) {
	if s.live == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		slog.Error("falha ao serializar notificação para push", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	channel := LiveChannel(notification.RecipientID)
	if err := s.live.Publish(ctx, channel, payload); err != nil {
		slog.Error("falha no push em tempo real", "channel", channel, "error", err)
	}
}

// LiveChannel é o canal redis assinado pela sessão do usuário.
func LiveChannel(userID int64) string {
	return fmt.Sprintf("notificacoes:%d", userID)
}

// RedisPublisher adapta o cliente redis para a interface LivePublisher.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
