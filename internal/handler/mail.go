package handler

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

// queueMail serializa a mensagem e publica na fila de e-mails; quem envia de
// fato é o worker de e-mail (cmd/mail).
func (h *Handler) queueMail(mailMessage domain.MailMessage) error {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}
