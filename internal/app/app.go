package app

import (
	"context"
	"fmt"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/cache"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/catalog"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/logger"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/news"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/pipeline"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/rewrite"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/scrape"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/social"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/store"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/sinks"
)

// App represents the pipeline runtime. It owns component wiring, the durable
// resources (content store, seen cache) and the post-run sink announcement.
type App struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	store  store.ContentStore
	seen   cache.SeenCache
	fanout *sinks.Fanout
	social *social.Publisher
	log    logger.Logger
}

// New builds the pipeline runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.FacebookAppSecret == "" {
		log.WarnObj("facebook app secret missing; social posts will fail", "config_key", "facebook_app_secret")
	}

	contentStore, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init content store: %w", err)
	}

	seen, err := cache.New(cfg.CacheType, cfg.CachePath, cache.Options{
		EntryTTL:        cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		contentStore.Close()
		return nil, fmt.Errorf("init seen cache: %w", err)
	}

	selectors, err := scrape.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		contentStore.Close()
		seen.Close()
		return nil, fmt.Errorf("load selectors: %w", err)
	}

	sinkReg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		contentStore.Close()
		seen.Close()
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), sinkReg.Enabled(), log)
	if err != nil {
		contentStore.Close()
		seen.Close()
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(built)

	deps := pipeline.Deps{
		Fetcher:  news.NewClient(cfg, nil, log),
		Store:    contentStore,
		Enricher: scrape.NewExtractor(nil, selectors, log),
		Seen:     seen,
		Log:      log,
	}

	var captions social.CaptionSource
	if cfg.OpenAIKey != "" {
		rewriter := rewrite.NewClient(cfg)
		deps.Rewriter = rewriter
		captions = rewriter
	} else {
		log.WarnObj("openai key missing; rewrite stage disabled", "config_key", "openai_api_key")
	}

	socialPublisher := social.NewPublisher(cfg, nil, captions, log)
	deps.Social = socialPublisher

	if cfg.CatalogEndpoint != "" {
		deps.Catalog = catalog.NewClient(cfg, nil)
	} else {
		log.WarnObj("catalog endpoint missing; product promotion disabled", "config_key", "catalog_endpoint")
	}

	pipe := pipeline.New(deps, pipeline.Options{
		Topic:     cfg.NewsTopic,
		Exclude:   cfg.NewsExclude,
		PostDelay: cfg.PostDelay,
	})

	log.InfoObj("pipeline wired", "app_state", map[string]any{
		"topic":       cfg.NewsTopic,
		"sinks_count": fanout.Size(),
		"cache_type":  cfg.CacheType,
	})

	return &App{
		cfg:    cfg,
		pipe:   pipe,
		store:  contentStore,
		seen:   seen,
		fanout: fanout,
		social: socialPublisher,
		log:    log,
	}, nil
}

// Run executes one pipeline pass and announces new content downstream.
// Zero saved articles is success; only a fetch-level failure returns an error.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.pipe == nil {
		return fmt.Errorf("app is not initialized")
	}
	defer a.close()

	result, err := a.pipe.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	a.log.InfoObj("pipeline result", "publish_result", map[string]any{
		"success": result.Success,
		"saved":   len(result.SavedArticles),
		"posts":   len(result.SocialPosts),
		"message": result.Message,
	})

	if len(result.SavedArticles) > 0 && a.fanout.Size() > 0 {
		refs := make([]sinks.ArticleRef, 0, len(result.SavedArticles))
		for _, rec := range result.SavedArticles {
			refs = append(refs, sinks.ArticleRef{
				Title: rec.Title,
				UID:   rec.UID,
				Link:  a.social.ArticleLink(rec.UID),
			})
		}
		if delivered, sinkErr := a.fanout.Send(ctx, sinks.NewContentEvent(refs)); sinkErr != nil {
			a.log.ErrorObj("sink announcement partially failed", "sink_result", map[string]any{
				"delivered": delivered,
				"error":     sinkErr.Error(),
			})
		}
	}

	return nil
}

// close releases the durable resources, logging any errors encountered.
func (a *App) close() {
	if a == nil {
		return
	}
	if a.seen != nil {
		if err := a.seen.Close(); err != nil {
			a.log.ErrorObj("seen cache close failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorObj("content store close failed", "error", err)
		}
	}
}
