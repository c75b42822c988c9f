package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

// mailTemplates mapeia o tipo de mensagem para o template e o assunto.
var mailTemplates = map[string]struct {
	File    string
	Subject string
}{
	"new_account":      {"./templates/new_account_email.html", "Demanda Tracker - Dados de acesso"},
	"account_approved": {"./templates/account_approved_email.html", "Demanda Tracker - Conta aprovada"},
	"reset_password":   {"./templates/reset_password_otp_email.html", "Demanda Tracker - Redefinição de senha"},
	"demand_assigned":  {"./templates/demand_assigned_email.html", "Demanda Tracker - Nova demanda atribuída"},
}

func main() {
	/**********************************************
	 * criar o logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * carregar a configuração
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("não foi possível carregar a configuração", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * criar o cliente de e-mail
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("não foi possível criar o cliente de e-mail", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("não foi possível conectar ao servidor de e-mail", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * conectar ao RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("não foi possível conectar ao RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("não foi possível abrir o canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue",
		true,  // durável
		false, // sem auto-delete, a fila sobrevive sem consumidores
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("não foi possível declarar a fila", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("não foi possível consumir a fila", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("falha ao desserializar a mensagem", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				logger.Info("mensagem recebida", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))

				entry, ok := mailTemplates[mailMessage.Type]
				if !ok {
					logger.Error("tipo de e-mail não suportado", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("não foi possível definir o remetente", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("não foi possível definir o destinatário", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(entry.File)
				if err != nil {
					logger.Error("não foi possível carregar o template", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
					logger.Error("não foi possível montar o corpo do e-mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(entry.Subject)

				if err := client.DialAndSend(m); err != nil {
					logger.Error("falha no envio do e-mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // volta para a fila
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("aguardando mensagens... (CTRL+C para sair)")
	<-sigChan

	slog.Info("encerrando o mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker encerrado com sucesso")
}
