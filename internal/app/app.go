package app

import (
	"context"
	"log/slog"

	"ContentEngine/internal/config"
	"ContentEngine/internal/domain"
	"ContentEngine/internal/generator"
	"ContentEngine/internal/infrastructure/embedding"
	"ContentEngine/internal/infrastructure/llm"
	"ContentEngine/internal/infrastructure/scheduler"
	"ContentEngine/internal/infrastructure/source"
	"ContentEngine/internal/infrastructure/storage"
	"ContentEngine/internal/infrastructure/telegram"
	"ContentEngine/internal/logging"
	"ContentEngine/internal/ports"
	"ContentEngine/internal/scraper"
	"ContentEngine/internal/usecase"
)

const (
	queueWorkers = 2
	queueBuffer  = 16
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	runner     *usecase.Runner
	queue      *usecase.JobQueue
	scheduler  *usecase.Scheduler
	repository *storage.SQLiteRepository
	audiences  []domain.Audience
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var repository *storage.SQLiteRepository
	if cfg.Database.Path != "" {
		repo, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		repository = repo
	}

	var chatClient ports.ChatClient
	if cfg.Generation.APIKey != "" {
		chatClient = llm.NewChatGPTClient(cfg.Generation)
	} else {
		baseLogger.Warn("generation api key missing, idea generation disabled")
	}

	var ideaGen *generator.ContentGenerator
	if chatClient != nil {
		ideaGen = generator.NewContentGenerator(chatClient, cfg.Generation.OutputFormats,
			baseLogger.With("component", "generator"))
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	var repoPort ports.RunRepository
	if repository != nil {
		repoPort = repository
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		SourceFor:  sourceFactory(cfg, baseLogger),
		Embedder:   embedding.New(cfg.Pipeline.Embedding, baseLogger.With("component", "embedding")),
		Repository: repoPort,
		Generator:  ideaGen,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "runner"),
	}, cfg.Pipeline, cfg.Output)

	queue := usecase.NewJobQueue(runner, queueWorkers, queueBuffer, baseLogger)

	audiences := audiencesFromConfig(cfg.Audiences)

	var sched *usecase.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, queue, audiences, baseLogger)
	}

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		runner:     runner,
		queue:      queue,
		scheduler:  sched,
		repository: repository,
		audiences:  audiences,
	}, nil
}

// Run executes the pipeline once for every configured audience. Errors per
// audience are logged; the first one is returned after all audiences ran.
func (a *Application) Run(ctx context.Context) error {
	var firstErr error
	for _, audience := range a.audiences {
		if _, err := a.runner.ProcessAudience(ctx, audience); err != nil {
			a.logger.Error("audience run failed", "audience", audience.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Serve starts the worker pool and the cron scheduler, then blocks until the
// context is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	a.queue.Start(ctx)
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
	}

	<-ctx.Done()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(context.Background()); err != nil {
			a.logger.Error("scheduler stop", "error", err)
		}
	}
	a.queue.Stop()
	return nil
}

// Close releases owned resources.
func (a *Application) Close() error {
	if a.repository != nil {
		return a.repository.Close()
	}
	return nil
}

// sourceFactory builds an audience-scoped aggregate source: subreddits and
// feeds come from the audience, credentials and limits from configuration.
func sourceFactory(cfg config.Config, baseLogger *slog.Logger) func(domain.Audience) ports.ContentSource {
	return func(audience domain.Audience) ports.ContentSource {
		scraping := cfg.Scraping
		for _, feedURL := range audience.Feeds {
			scraping.RSS.Feeds = append(scraping.RSS.Feeds, config.FeedConfig{URL: feedURL})
		}

		registry := scraper.NewRegistry()
		var names []string

		if scraping.Reddit.Enabled && len(audience.Subreddits) > 0 {
			registry.Register(source.NewRedditSource(scraping, audience.Subreddits, nil,
				baseLogger.With("component", "source.reddit")))
			names = append(names, "reddit")
		}
		if scraping.YouTube.Enabled {
			registry.Register(source.NewYouTubeSource(scraping, nil,
				baseLogger.With("component", "source.youtube")))
			names = append(names, "youtube")
		}
		if scraping.RSS.Enabled && len(scraping.RSS.Feeds) > 0 {
			registry.Register(source.NewRSSSource(scraping, nil,
				baseLogger.With("component", "source.rss")))
			names = append(names, "rss")
		}
		if scraping.Trends.Enabled {
			registry.Register(source.NewTrendsSource(scraping, nil,
				baseLogger.With("component", "source.trends")))
			names = append(names, "google_trends")
		}

		return source.NewMultiSource(registry, names, baseLogger.With("component", "source"))
	}
}

func audiencesFromConfig(configs []config.AudienceConfig) []domain.Audience {
	audiences := make([]domain.Audience, 0, len(configs))
	for _, c := range configs {
		audiences = append(audiences, domain.Audience{
			ID:               c.ID,
			Name:             c.Name,
			Description:      c.Description,
			CoreKeywords:     c.CoreKeywords,
			ExtendedKeywords: c.ExtendedKeywords,
			Subreddits:       c.Subreddits,
			Feeds:            c.Feeds,
		})
	}
	return audiences
}
