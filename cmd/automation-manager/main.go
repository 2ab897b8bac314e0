// cmd/automation-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"lead-automation/internal/api"
	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/airtable"
	"lead-automation/internal/common/aws"
	"lead-automation/internal/common/camunda"
	"lead-automation/internal/common/completion"
	"lead-automation/internal/common/config"
	"lead-automation/internal/common/database"
	"lead-automation/internal/common/email"
	"lead-automation/internal/common/leadstore"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/observability"
	"lead-automation/internal/common/refresh"
	"lead-automation/internal/common/scheduler"
	"lead-automation/internal/common/sms"
	"lead-automation/internal/common/webhook"
	"lead-automation/internal/models"

	// Conversation
	gr "lead-automation/internal/workers/ai-conversation/generate-response"

	// Automation
	fus "lead-automation/internal/workers/automation/follow-up-sequence"
	pnl "lead-automation/internal/workers/automation/process-new-lead"
	ql "lead-automation/internal/workers/automation/qualify-lead"
	sh "lead-automation/internal/workers/automation/service-health"
)

// leadStore is implemented by both the Airtable and the Postgres adapters.
type leadStore interface {
	Create(ctx context.Context, fields map[string]interface{}) (*models.Record, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	CheckConnectivity(ctx context.Context) error
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting automation manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("dataStore", cfg.DataStore.Provider),
		zap.String("email", cfg.Email.Provider),
		zap.String("sms", cfg.SMS.Provider),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Redis (client config store, follow-up queue) ---
	var rdb *database.RedisClient
	if cfg.ClientConfig.Store == "redis" || cfg.Scheduler.Enabled {
		rdb = database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		zapLog.Info("Redis connected successfully")
	}

	// --- Data store ---
	var store leadStore
	switch cfg.DataStore.Provider {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pgStore := leadstore.NewPostgresStore(pg.DB)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("failed to prepare lead table", zap.Error(err))
		}
		store = pgStore
	default:
		store = airtable.NewClient(airtable.Config{
			BaseURL: cfg.DataStore.Airtable.BaseURL,
			BaseID:  cfg.DataStore.Airtable.BaseID,
			Token:   cfg.DataStore.Airtable.Token,
			Table:   cfg.DataStore.Airtable.Table,
			Timeout: config.GetDuration(cfg.DataStore.Airtable.Timeout),
		})
	}

	// --- Remote services ---
	completer := completion.NewClient(completion.Config{
		BaseURL: cfg.Completion.BaseURL,
		APIKey:  cfg.Completion.APIKey,
		Model:   cfg.Completion.Model,
		Timeout: config.GetDuration(cfg.Completion.Timeout),
	})

	emailSender, smsSender, quota := buildSenders(ctx, cfg, log, zapLog)

	webhooks := webhook.NewDispatcher(cfg.Webhooks.URLs, cfg.Webhooks.Source, config.GetDuration(cfg.Webhooks.Timeout))

	// --- Client configuration ---
	var cfgStore clientconfig.Store = clientconfig.NewMemoryStore()
	if cfg.ClientConfig.Store == "redis" {
		cfgStore = clientconfig.NewRedisStore(rdb.Client, cfg.App.Name+":")
	}
	configs := clientconfig.NewProvider(cfgStore, log)
	if _, err := configs.Initialize(ctx); err != nil {
		zapLog.Warn("client config unavailable, using defaults", zap.Error(err))
	}

	// --- Follow-up scheduling ---
	var followUpScheduler scheduler.FollowUpScheduler = scheduler.NewLogScheduler(log)
	if cfg.Scheduler.Enabled {
		client := scheduler.NewClient(cfg.Database.Redis, cfg.Scheduler)
		defer client.Close()
		followUpScheduler = client
	}

	// --- Services ---
	qualifyHandler := ql.NewHandler(ql.HandlerOptions{
		AppConfig: cfg,
		Completer: completer,
		Configs:   configs,
		Logger:    log,
	})

	processor := pnl.NewService(pnl.ServiceDependencies{
		Store:     store,
		Qualifier: qualifyHandler.Service(),
		Webhooks:  webhooks,
		Email:     emailSender,
		SMS:       smsSender,
		FollowUps: followUpScheduler,
		Configs:   configs,
		Recorder:  obs,
		Logger:    log,
	})

	followUps := fus.NewService(fus.ServiceDependencies{
		Email:    emailSender,
		SMS:      smsSender,
		Webhooks: webhooks,
		Configs:  configs,
		Logger:   log,
	})

	health := sh.NewService([]sh.Probe{
		{Name: sh.ServiceDataStore, Checker: store},
		{Name: sh.ServiceCompletion, Checker: completer},
		{Name: sh.ServiceWebhook, Checker: webhooks},
		{Name: sh.ServiceEmail, Checker: emailSender},
		{Name: sh.ServiceSMS, Checker: smsSender},
	}, 0, log)

	chatHandler := gr.NewHandler(gr.HandlerOptions{
		AppConfig: cfg,
		Completer: completer,
		Configs:   configs,
		Logger:    log,
	})

	// --- Follow-up delivery worker ---
	if cfg.Scheduler.Enabled {
		w := scheduler.NewWorker(cfg.Database.Redis, cfg.Scheduler, followUps, log)
		go w.Run(ctx)
	}

	// --- Zeebe workers ---
	var jobWorkers []worker.JobWorker
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()

		handlers := []struct {
			taskType string
			handler  camunda.JobHandler
		}{
			{pnl.TaskType, pnl.NewHandler(pnl.HandlerOptions{AppConfig: cfg, Service: processor, Logger: log})},
			{ql.TaskType, qualifyHandler},
			{fus.TaskType, fus.NewHandler(fus.HandlerOptions{AppConfig: cfg, Service: followUps, Logger: log})},
			{gr.TaskType, chatHandler},
		}
		for _, h := range handlers {
			if jw := camunda.StartWorker(zeebe.GetClient(), h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handler, log); jw != nil {
				jobWorkers = append(jobWorkers, jw)
			}
		}
		zapLog.Info("Zeebe workers registered", zap.Int("count", len(jobWorkers)))
	}

	// --- Lead feed ---
	refresher := refresh.NewScheduler(config.GetDuration(cfg.Refresh.Interval), log)
	defer refresher.StopAll()

	feed := api.NewLeadFeed(store, log)
	if err := feed.Refresh(ctx); err != nil {
		zapLog.Warn("initial lead feed refresh failed", zap.Error(err))
	}
	feed.Subscribe(refresher)

	// --- HTTP API ---
	var ready atomic.Bool
	deps := api.Dependencies{
		Leads:     processor,
		Feed:      feed,
		FollowUps: followUps,
		Health:    health,
		Configs:   configs,
		Chat:      chatHandler.Service(),
		Metrics:   observability.Handler(),
		Quota:     quota,
		Ready:     ready.Load,
		Logger:    log,
	}
	router := api.NewServer(deps, api.Options{
		RateLimit:   cfg.API.RateLimit,
		Burst:       cfg.API.Burst,
		LimiterIdle: config.GetDuration(cfg.API.LimiterIdle),
		TrustProxy:  cfg.API.TrustProxy,
	}).Routes()
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()
	ready.Store(true)

	// --- Graceful Shutdown ---
	<-ctx.Done()
	ready.Store(false)
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}

	zapLog.Info("Automation manager stopped gracefully")
}

// buildSenders selects the configured email and SMS providers. The returned
// quota checker is nil unless the SMS provider reports remaining quota.
func buildSenders(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (*email.Sender, *sms.Sender, api.QuotaChecker) {
	var awsClients *awsSet
	getAWS := func() *awsSet {
		if awsClients == nil {
			awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region)
			if err != nil {
				zapLog.Fatal("aws config failed", zap.Error(err))
			}
			awsClients = &awsSet{ses: aws.NewSESClient(awsCfg), sns: aws.NewSNSClient(awsCfg)}
		}
		return awsClients
	}

	emailTimeout := config.GetDuration(cfg.Email.Timeout)
	var emailProvider email.Provider
	switch cfg.Email.Provider {
	case "ses":
		emailProvider = email.NewSESProvider(getAWS().ses)
	case "smtp":
		emailProvider = email.NewSMTPProvider(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port, cfg.Email.SMTP.Username, cfg.Email.SMTP.Password, emailTimeout)
	default:
		emailProvider = email.NewBrevoProvider(cfg.Email.Brevo.BaseURL, cfg.Email.Brevo.APIKey, emailTimeout)
	}

	var (
		smsProvider sms.Provider
		quota       api.QuotaChecker
	)
	switch cfg.SMS.Provider {
	case "sns":
		smsProvider = sms.NewSNSProvider(getAWS().sns, cfg.SMS.DefaultRegion)
	default:
		textbelt := sms.NewTextbeltProvider(cfg.SMS.Textbelt.BaseURL, cfg.SMS.Textbelt.APIKey, config.GetDuration(cfg.SMS.Timeout))
		smsProvider = textbelt
		quota = textbelt
	}

	return email.NewSender(emailProvider, cfg.Email.SenderName, cfg.Email.SenderEmail, log),
		sms.NewSender(smsProvider, log),
		quota
}

type awsSet struct {
	ses *aws.SESClient
	sns *aws.SNSClient
}
