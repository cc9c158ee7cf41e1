package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/blob"
	"github.com/taskmanager/task-api/internal/infrastructure/config"
	"github.com/taskmanager/task-api/internal/infrastructure/csvcodec"
	mongodb "github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskmanager/task-api/internal/infrastructure/db/redis"
	"github.com/taskmanager/task-api/internal/infrastructure/mail"
	"github.com/taskmanager/task-api/internal/infrastructure/queue"
	"github.com/taskmanager/task-api/pkg/logger"
)

const disconnectTimeout = 5 * time.Second

// runtime holds the connections and services shared by the commands.
type runtime struct {
	cfg *config.Config
	log zerolog.Logger

	mongoClient *mongo.Client
	db          *mongo.Database
	rdb         *redis.Client

	users     *mongodb.UserRepository
	tasks     *mongodb.TaskRepository
	taskTypes *mongodb.TaskTypeRepository
	workflows *mongodb.WorkflowRepository
}

// loadRuntime reads .env and the environment, initialises logging and
// connects to MongoDB. Redis is connected only when withRedis is set.
func loadRuntime(ctx context.Context, withRedis bool) (*runtime, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		File:   cfg.LogFile,
	})
	if envErr != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:         cfg,
		log:         log,
		mongoClient: client,
		db:          db,
		users:       mongodb.NewUserRepository(db),
		tasks:       mongodb.NewTaskRepository(db),
		taskTypes:   mongodb.NewTaskTypeRepository(db),
		workflows:   mongodb.NewWorkflowRepository(db),
	}

	if err := mongodb.EnsureIndexes(ctx, rt.users, rt.tasks); err != nil {
		rt.close()
		return nil, err
	}

	if withRedis {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.rdb = rdb
	}

	log.Info().
		Str("env", cfg.Env).
		Str("mongo_db", cfg.Mongo.Database).
		Bool("redis", withRedis).
		Msg("runtime ready")
	return rt, nil
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if rt.rdb != nil {
		if err := rt.rdb.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if err := rt.mongoClient.Disconnect(ctx); err != nil {
		rt.log.Warn().Err(err).Msg("mongo disconnect failed")
	}
	_ = logger.Close()
}

func (rt *runtime) blobStore() (ports.BlobStore, error) {
	if rt.cfg.Storage.Driver == config.StorageCloudinary {
		store, err := blob.NewCloudinaryStore(blob.CloudinaryConfig{
			CloudName: rt.cfg.Cloudinary.CloudName,
			APIKey:    rt.cfg.Cloudinary.APIKey,
			APISecret: rt.cfg.Cloudinary.APISecret,
			Folder:    rt.cfg.Cloudinary.Folder,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := blob.NewLocalStore(rt.cfg.Storage.LocalDir, rt.cfg.Storage.PublicURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// uploadsDir is the directory served under /uploads, empty when files live remotely.
func (rt *runtime) uploadsDir() string {
	if rt.cfg.Storage.Driver == config.StorageLocal {
		return rt.cfg.Storage.LocalDir
	}
	return ""
}

func (rt *runtime) notifier() (*mail.SMTPNotifier, error) {
	return mail.NewSMTPNotifier(mail.Config{
		Host:     rt.cfg.SMTP.Host,
		Port:     rt.cfg.SMTP.Port,
		Username: rt.cfg.SMTP.Username,
		Password: rt.cfg.SMTP.Password,
		From:     rt.cfg.SMTP.From,
	})
}

// reminders builds the reminder service on top of a started dispatcher.
// Callers must Close the dispatcher to flush queued mail.
func (rt *runtime) reminders(ctx context.Context) (*service.ReminderService, *queue.Dispatcher, error) {
	notifier, err := rt.notifier()
	if err != nil {
		return nil, nil, err
	}

	dispatcher := queue.NewDispatcher(rt.cfg.Reminder.Workers, notifier, rt.log)
	dispatcher.OnResult(func(_ ports.Notification, err error) {
		if err != nil {
			metrics.RemindersTotal.WithLabelValues("failed").Inc()
			return
		}
		metrics.RemindersTotal.WithLabelValues("sent").Inc()
	})
	dispatcher.Start(ctx)

	var ledger ports.ReminderLedger
	if rt.rdb != nil {
		ledger = redisdb.NewReminderLedger(rt.rdb)
	}

	svc := service.NewReminderService(service.ReminderDeps{
		Tasks:    rt.tasks,
		Users:    rt.users,
		Ledger:   ledger,
		Queue:    dispatcher,
		Notifier: notifier,
	}, rt.cfg.Reminder.Window, rt.log)
	return svc, dispatcher, nil
}

// runScan performs one reminder scan and records its metrics.
func runScan(ctx context.Context, svc ports.ReminderService) (ports.ScanResult, error) {
	started := time.Now()
	res, err := svc.Scan(ctx)
	metrics.ReminderScanDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return res, fmt.Errorf("reminder scan: %w", err)
	}
	metrics.RemindersTotal.WithLabelValues("queued").Add(float64(res.Queued))
	metrics.RemindersTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
	return res, nil
}

func (rt *runtime) taskService() (*service.TaskService, error) {
	store, err := rt.blobStore()
	if err != nil {
		return nil, err
	}
	return service.NewTaskService(service.TaskDeps{
		Tasks:     rt.tasks,
		Users:     rt.users,
		TaskTypes: rt.taskTypes,
		Workflows: rt.workflows,
		Blobs:     store,
		CSV:       csvcodec.New(),
	}, rt.cfg.Tasks.StrictCustomFields, rt.log), nil
}
