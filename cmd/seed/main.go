package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/repository"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation to run (1: insert random users, 2: insert random tasks)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	ctx = context.Background()

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("invalid number of users", slog.Int("n", n))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("failed to generate user", slog.String("error", err.Error()))
				continue
			}

			// random usernames can collide, the unique constraint catches it
			if err := repo.CreateUser(ctx, user); err != nil {
				slog.Error("failed to insert user", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("users inserted", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("invalid number of tasks", slog.Int("n", n))
			return
		}

		users, err := repo.GetAllUsers(ctx)
		if err != nil {
			slog.Error("failed to load users", slog.String("error", err.Error()))
			return
		}

		var members []*domain.User
		for _, u := range users {
			if !u.IsAdmin() {
				members = append(members, u)
			}
		}
		if len(members) == 0 {
			slog.Error("no users to own the tasks, run -op 1 first")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			creator := members[rand.Intn(len(members))]
			task := utils.GenerateRandomTask(creator, members)
			if err := repo.CreateTask(ctx, task); err != nil {
				slog.Error("failed to insert task", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("tasks inserted", slog.Int("count", cnt))
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
