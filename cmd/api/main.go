package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
	"github.com/seduc-dev/demanda-tracker/backend/internal/handler"
	"github.com/seduc-dev/demanda-tracker/backend/internal/repository"
	"github.com/seduc-dev/demanda-tracker/backend/internal/scheduler"
	"github.com/seduc-dev/demanda-tracker/backend/internal/utils"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * criar o logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * carregar a configuração
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("não foi possível carregar a configuração", "error", err)
		return
	}

	/**********************************************
	 * conectar ao banco de dados
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("não foi possível criar o pool de conexões", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open não conecta de fato, por isso o ping explícito
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("não foi possível conectar ao banco de dados", "error", err)
		return
	}

	/**********************************************
	 * criar o repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * garantir o administrador inicial
	 **********************************************/
	passwordHash, err := utils.HashPassword(cfg.InitialAdmin.Password)
	if err != nil {
		logger.Error("não foi possível gerar o hash da senha do administrador inicial", "error", err)
		return
	}
	initialAdmin := &domain.User{
		Name:         cfg.InitialAdmin.Name,
		Email:        cfg.InitialAdmin.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdministrator,
		IsActive:     true,
	}
	if err := repo.CreateUser(initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_email_key":
				// o administrador inicial já existe, nada a fazer
			default:
				logger.Error("não foi possível criar o administrador inicial", "error", err)
				return
			}
		default:
			logger.Error("não foi possível criar o administrador inicial", "error", err)
			return
		}
	}

	/**********************************************
	 * conectar ao rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("não foi possível conectar ao rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("não foi possível abrir o canal", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("não foi possível declarar a fila", "error", err)
		return
	}

	/**********************************************
	 * conectar ao redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * iniciar o agendador de lembretes
	 **********************************************/
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	reminder, err := scheduler.New(cfg, repo, scheduler.NewRedisPublisher(rdb))
	if err != nil {
		logger.Error("não foi possível criar o agendador de lembretes", "error", err)
		return
	}
	go reminder.Start(schedulerCtx)

	/**********************************************
	 * criar o handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb)
	if err != nil {
		logger.Error("não foi possível criar o handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * iniciar o servidor HTTP
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("iniciando o servidor...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("não foi possível iniciar o servidor", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("encerrando o servidor...")
	stopScheduler()

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("falha ao encerrar o servidor", slog.String("error", err.Error()))
	}
	logger.Info("servidor encerrado com sucesso")
}
