package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the reminder scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := loadRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.close()
	log := rt.log

	tasks, err := rt.taskService()
	if err != nil {
		return err
	}

	// The dispatcher outlives ctx so queued reminders drain after a signal.
	reminders, dispatcher, err := rt.reminders(context.Background())
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	sched, err := scheduler.New(rt.cfg.Reminder.Timezone, log)
	if err != nil {
		return err
	}
	err = sched.Add("reminders", rt.cfg.Reminder.Cron, func(jobCtx context.Context) {
		if _, err := runScan(jobCtx, reminders); err != nil {
			log.Error().Err(err).Msg("scheduled reminder scan failed")
		}
	})
	if err != nil {
		return err
	}
	sched.Start()

	users := service.NewUserService(rt.users, log)
	e := api.NewRouter(api.Deps{
		Logger:    log,
		JWTSecret: rt.cfg.JWTSecret,
		Auth:      service.NewAuthService(rt.users, rt.cfg.JWTSecret, rt.cfg.TokenTTL),
		Users:     users,
		Tasks:     tasks,
		TaskTypes: service.NewTaskTypeService(rt.taskTypes, log),
		Workflows: service.NewWorkflowService(rt.workflows, log),
		Reminders: reminders,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": handler.MongoCheck(rt.db),
			"redis":   handler.RedisCheck(rt.rdb),
		},
		MaxUploadMB: rt.cfg.Tasks.MaxUploadMB,
		UploadsDir:  rt.uploadsDir(),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", rt.cfg.Port).Str("env", rt.cfg.Env).Msg("server starting")
		if err := e.Start(":" + rt.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			sched.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	sched.Stop(shutdownCtx)

	log.Info().Msg("server stopped")
	return nil
}
