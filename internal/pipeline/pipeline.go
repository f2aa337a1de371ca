package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/cache"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/logger"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/news"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/store"
)

// Fetcher pulls candidate articles from the news search API.
type Fetcher interface {
	FetchWithRetry(ctx context.Context) ([]domain.CandidateArticle, error)
}

// Enricher retrieves the full article body from the source page.
type Enricher interface {
	FullText(ctx context.Context, url string) (string, bool)
}

// Rewriter produces an original rewrite of an article body.
type Rewriter interface {
	Rewrite(ctx context.Context, title, body string) (string, error)
}

// SocialPublisher announces saved articles and promoted products.
type SocialPublisher interface {
	PostArticle(ctx context.Context, rec domain.ContentRecord) bool
	PostProduct(ctx context.Context, product domain.PromotedProduct) bool
}

// Catalog reads the most recent product for the trailing promotion step.
type Catalog interface {
	LatestProduct(ctx context.Context) (domain.PromotedProduct, error)
}

// Deps wires the collaborators into the orchestrator.
type Deps struct {
	Fetcher  Fetcher
	Store    store.ContentStore
	Enricher Enricher
	Rewriter Rewriter
	Social   SocialPublisher
	Catalog  Catalog
	Seen     cache.SeenCache
	Log      logger.Logger
}

// Options carries the run parameters.
type Options struct {
	Topic     string
	Exclude   string
	PostDelay time.Duration
}

// Pipeline runs one ingestion-and-publish pass. Execution is strictly
// sequential: the social platform's rate limits and the check-then-insert
// dedup sequence are not safe under concurrency, so overlapping runs must be
// serialized by the invoking scheduler.
type Pipeline struct {
	fetcher   Fetcher
	store     store.ContentStore
	enricher  Enricher
	rewriter  Rewriter
	social    SocialPublisher
	catalog   Catalog
	seen      cache.SeenCache
	topic     string
	exclude   string
	postDelay time.Duration
	log       logger.Logger
}

// New constructs the orchestrator. Rewriter, Catalog and Seen may be nil; the
// corresponding stages degrade to their fallbacks.
func New(deps Deps, opts Options) *Pipeline {
	log := deps.Log
	if log == nil {
		log = logger.NopLogger{}
	}
	seen := deps.Seen
	if seen == nil {
		seenCache, _ := cache.New("none", "", cache.Options{})
		seen = seenCache
	}
	return &Pipeline{
		fetcher:   deps.Fetcher,
		store:     deps.Store,
		enricher:  deps.Enricher,
		rewriter:  deps.Rewriter,
		social:    deps.Social,
		catalog:   deps.Catalog,
		seen:      seen,
		topic:     opts.Topic,
		exclude:   opts.Exclude,
		postDelay: opts.PostDelay,
		log:       log,
	}
}

// Run executes the full sequence: fetch, filter, per-item stages, trailing
// product promotion. Only a fetch failure yields a failure result; every
// other error is isolated to its item.
func (p *Pipeline) Run(ctx context.Context) (domain.PublishResult, error) {
	if p == nil || p.fetcher == nil || p.store == nil {
		err := fmt.Errorf("pipeline is not initialized")
		return domain.PublishResult{Success: false, Message: err.Error()}, err
	}

	start := time.Now()

	candidates, err := p.fetcher.FetchWithRetry(ctx)
	if err != nil {
		p.log.ErrorObj("news fetch failed, aborting run", "error", err)
		return domain.PublishResult{
			Success: false,
			Message: fmt.Sprintf("news fetch failed: %v", err),
		}, err
	}

	relevant := news.FilterRelevant(candidates, p.topic, p.exclude)
	p.log.InfoObj("candidates fetched", "fetch_result", map[string]any{
		"fetched":  len(candidates),
		"relevant": len(relevant),
	})

	result := domain.PublishResult{Success: true}
	postedBefore := false

	for _, candidate := range relevant {
		if seen, seenErr := p.seen.SeenURL(candidate.URL); seenErr == nil && seen {
			p.log.DebugObj("candidate already attempted in earlier run", "seen_skip", map[string]any{
				"title": candidate.Title,
			})
			continue
		}

		item := &itemState{article: candidate}
		stageName, outcome := runStages(ctx, p.itemStages(&postedBefore), item)

		switch outcome.status {
		case stageFail:
			p.log.ErrorObj("article processing failed", "item_error", map[string]any{
				"title":  candidate.Title,
				"stage":  stageName,
				"reason": outcome.reason,
				"error":  errString(outcome.err),
			})
			continue
		case stageSkip:
			p.log.InfoObj("article skipped", "item_skip", map[string]any{
				"title":  candidate.Title,
				"stage":  stageName,
				"reason": outcome.reason,
			})
		default:
			result.SavedArticles = append(result.SavedArticles, item.record)
			if item.posted != nil {
				result.SocialPosts = append(result.SocialPosts, *item.posted)
			}
		}

		if markErr := p.seen.MarkURL(candidate.URL); markErr != nil {
			p.log.WarnObj("seen cache mark failed", "cache_error", map[string]any{
				"url":   candidate.URL,
				"error": markErr.Error(),
			})
		}
	}

	if len(result.SavedArticles) > 0 {
		if outcome, ok := p.promoteProduct(ctx); ok {
			result.SocialPosts = append(result.SocialPosts, outcome)
		}
	}

	result.Message = fmt.Sprintf("%d articles saved, %d social posts attempted",
		len(result.SavedArticles), len(result.SocialPosts))
	p.log.InfoObj("pipeline run completed", "run_meta", map[string]any{
		"saved":      len(result.SavedArticles),
		"posts":      len(result.SocialPosts),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

// itemStages builds the ordered per-item sub-sequence:
// DedupCheck -> Enrich -> Rewrite -> Persist -> Publish.
func (p *Pipeline) itemStages(postedBefore *bool) []stage {
	return []stage{
		{name: "dedup", run: func(ctx context.Context, item *itemState) stageOutcome {
			dedup := p.store.CheckTitle(ctx, item.article.Title)
			switch dedup.Status {
			case store.DedupFound:
				return skip("title already stored")
			case store.DedupError:
				return fail("dedup lookup failed", dedup.Err)
			default:
				return proceed()
			}
		}},
		{name: "enrich", run: func(ctx context.Context, item *itemState) stageOutcome {
			item.content = item.article.Description
			if p.enricher == nil {
				return proceed()
			}
			if text, ok := p.enricher.FullText(ctx, item.article.URL); ok {
				item.content = text
			}
			return proceed()
		}},
		{name: "rewrite", run: func(ctx context.Context, item *itemState) stageOutcome {
			if p.rewriter == nil || item.content == "" {
				return proceed()
			}
			rewritten, err := p.rewriter.Rewrite(ctx, item.article.Title, item.content)
			if err != nil {
				p.log.WarnObj("rewrite unavailable, keeping original text", "rewrite_error", map[string]any{
					"title": item.article.Title,
					"error": err.Error(),
				})
				return proceed()
			}
			item.content = rewritten
			return proceed()
		}},
		{name: "persist", run: func(ctx context.Context, item *itemState) stageOutcome {
			date := item.article.PublishedAt
			if date.IsZero() {
				date = time.Now().UTC()
			}
			item.record = domain.ContentRecord{
				Title:       item.article.Title,
				Content:     item.content,
				ImageURL:    item.article.ImageURL,
				Date:        date,
				UID:         store.Slugify(item.article.Title),
				IsPublished: true,
				Category:    store.CategoryNews,
			}
			if err := p.store.InsertArticle(ctx, item.record); err != nil {
				return fail("insert failed", err)
			}
			return proceed()
		}},
		{name: "publish", run: func(ctx context.Context, item *itemState) stageOutcome {
			if p.social == nil {
				return proceed()
			}
			if *postedBefore {
				if err := p.waitPostDelay(ctx); err != nil {
					item.posted = &domain.PostOutcome{Title: item.article.Title, Published: false}
					return proceed()
				}
			}
			published := p.social.PostArticle(ctx, item.record)
			*postedBefore = true
			item.posted = &domain.PostOutcome{Title: item.article.Title, Published: published}
			return proceed()
		}},
	}
}

// promoteProduct runs the trailing promotion step: read the most recent
// catalog product and announce it. Only invoked when the run saved something.
func (p *Pipeline) promoteProduct(ctx context.Context) (domain.PostOutcome, bool) {
	if p.catalog == nil || p.social == nil {
		return domain.PostOutcome{}, false
	}

	product, err := p.catalog.LatestProduct(ctx)
	if err != nil {
		p.log.WarnObj("product promotion skipped", "catalog_error", map[string]any{
			"error": err.Error(),
		})
		return domain.PostOutcome{}, false
	}

	published := p.social.PostProduct(ctx, product)
	return domain.PostOutcome{Title: product.Title, Published: published}, true
}

// waitPostDelay suspends between successive social posts as rate-limit
// courtesy to the platform.
func (p *Pipeline) waitPostDelay(ctx context.Context) error {
	if p.postDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.postDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
