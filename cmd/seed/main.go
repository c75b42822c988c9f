package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/config"
	"github.com/seduc-dev/demanda-tracker/backend/internal/repository"
	"github.com/seduc-dev/demanda-tracker/backend/internal/seed"

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

	if cfg.Environment == "production" {
		logger.Error("o seed não deve rodar em produção")
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("não foi possível conectar ao banco de dados", "error", err)
		return
	}

	/**********************************************
	 * rodar o seed
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)
	seed.Run(cfg, repo, 30, 60)
}
