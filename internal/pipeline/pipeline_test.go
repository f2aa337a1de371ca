package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/store"
)

// fakeFetcher returns preset articles or an error.
type fakeFetcher struct {
	articles []domain.CandidateArticle
	err      error
}

func (f *fakeFetcher) FetchWithRetry(context.Context) ([]domain.CandidateArticle, error) {
	return f.articles, f.err
}

// fakeStore keeps records in memory and can inject lookup/insert failures.
type fakeStore struct {
	titles     map[string]bool
	records    []domain.ContentRecord
	lookupFail map[string]bool
	insertFail map[string]bool
}

func newFakeStore(existing ...string) *fakeStore {
	titles := make(map[string]bool, len(existing))
	for _, t := range existing {
		titles[t] = true
	}
	return &fakeStore{
		titles:     titles,
		lookupFail: map[string]bool{},
		insertFail: map[string]bool{},
	}
}

func (f *fakeStore) CheckTitle(_ context.Context, title string) store.DedupResult {
	if f.lookupFail[title] {
		return store.DedupResult{Status: store.DedupError, Err: errors.New("store unreachable")}
	}
	if f.titles[title] {
		return store.DedupResult{Status: store.DedupFound}
	}
	return store.DedupResult{Status: store.DedupFresh}
}

func (f *fakeStore) InsertArticle(_ context.Context, rec domain.ContentRecord) error {
	if f.insertFail[rec.Title] {
		return errors.New("constraint violation")
	}
	f.titles[rec.Title] = true
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) Close() error { return nil }

// fakeEnricher returns fixed scraped text or a miss.
type fakeEnricher struct {
	text string
	ok   bool
}

func (f fakeEnricher) FullText(context.Context, string) (string, bool) { return f.text, f.ok }

// fakeRewriter returns fixed output or an error.
type fakeRewriter struct {
	out string
	err error
}

func (f fakeRewriter) Rewrite(_ context.Context, _, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.out != "" {
		return f.out, nil
	}
	return "reescrito: " + body, nil
}

// fakeSocial records publish calls and can fail specific titles.
type fakeSocial struct {
	articleCalls []string
	productCalls []string
	failTitles   map[string]bool
}

func (f *fakeSocial) PostArticle(_ context.Context, rec domain.ContentRecord) bool {
	f.articleCalls = append(f.articleCalls, rec.Title)
	return !f.failTitles[rec.Title]
}

func (f *fakeSocial) PostProduct(_ context.Context, product domain.PromotedProduct) bool {
	f.productCalls = append(f.productCalls, product.Title)
	return true
}

// fakeCatalog records lookups.
type fakeCatalog struct {
	product domain.PromotedProduct
	err     error
	calls   int
}

func (f *fakeCatalog) LatestProduct(context.Context) (domain.PromotedProduct, error) {
	f.calls++
	return f.product, f.err
}

func candidates(titles ...string) []domain.CandidateArticle {
	out := make([]domain.CandidateArticle, 0, len(titles))
	for _, t := range titles {
		out = append(out, domain.CandidateArticle{
			Title:       t,
			Description: "descricao de " + t,
			URL:         "https://src.example/" + store.Slugify(t),
		})
	}
	return out
}

func newTestPipeline(deps Deps) *Pipeline {
	return New(deps, Options{Topic: "Flamengo", Exclude: "flamenguista"})
}

func TestRunZeroResultIsSuccess(t *testing.T) {
	p := newTestPipeline(Deps{
		Fetcher: &fakeFetcher{},
		Store:   newFakeStore(),
	})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Success {
		t.Fatalf("zero articles must be success, got %+v", result)
	}
	if len(result.SavedArticles) != 0 {
		t.Fatalf("expected no saved articles, got %d", len(result.SavedArticles))
	}
}

func TestRunFetchFailureIsTerminal(t *testing.T) {
	p := newTestPipeline(Deps{
		Fetcher: &fakeFetcher{err: errors.New("news api down")},
		Store:   newFakeStore(),
	})

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatalf("expected fetch error to propagate")
	}
	if result.Success {
		t.Fatalf("fetch failure must yield a failure result")
	}
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico", "Flamengo anuncia reforço")}
	contentStore := newFakeStore()
	social := &fakeSocial{}

	p := newTestPipeline(Deps{Fetcher: fetcher, Store: contentStore, Social: social})

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.SavedArticles) != 2 {
		t.Fatalf("first run should save 2, got %d", len(first.SavedArticles))
	}

	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.SavedArticles) != 0 {
		t.Fatalf("second run must save nothing, got %d", len(second.SavedArticles))
	}
	if !second.Success {
		t.Fatalf("duplicate-only run is still success")
	}
}

func TestRunEnrichmentMissPersistsDescriptionVerbatim(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico")}
	contentStore := newFakeStore()

	p := newTestPipeline(Deps{
		Fetcher:  fetcher,
		Store:    contentStore,
		Enricher: fakeEnricher{ok: false},
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(contentStore.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(contentStore.records))
	}
	if got := contentStore.records[0].Content; got != "descricao de Flamengo vence clássico" {
		t.Fatalf("miss must persist the description verbatim, got %q", got)
	}
}

func TestRunScrapedTextFlowsThroughRewriter(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico")}
	contentStore := newFakeStore()

	p := newTestPipeline(Deps{
		Fetcher:  fetcher,
		Store:    contentStore,
		Enricher: fakeEnricher{text: "texto completo da partida", ok: true},
		Rewriter: fakeRewriter{},
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := contentStore.records[0].Content; got != "reescrito: texto completo da partida" {
		t.Fatalf("unexpected persisted content %q", got)
	}
}

func TestRunRewriteFailureKeepsOriginalText(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico")}
	contentStore := newFakeStore()

	p := newTestPipeline(Deps{
		Fetcher:  fetcher,
		Store:    contentStore,
		Enricher: fakeEnricher{text: "texto completo da partida", ok: true},
		Rewriter: fakeRewriter{err: errors.New("quota exceeded")},
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := contentStore.records[0].Content; got != "texto completo da partida" {
		t.Fatalf("rewrite failure must keep the original text, got %q", got)
	}
}

func TestRunPromotionOnlyWhenSomethingSaved(t *testing.T) {
	catalog := &fakeCatalog{product: domain.PromotedProduct{Title: "Camisa Flamengo I"}}
	social := &fakeSocial{}

	// All candidates are duplicates: promotion must not run.
	p := newTestPipeline(Deps{
		Fetcher: &fakeFetcher{articles: candidates("Flamengo vence clássico")},
		Store:   newFakeStore("Flamengo vence clássico"),
		Social:  social,
		Catalog: catalog,
	})
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if catalog.calls != 0 || len(social.productCalls) != 0 {
		t.Fatalf("promotion must be skipped when nothing saved (catalog=%d product_posts=%d)",
			catalog.calls, len(social.productCalls))
	}

	// A fresh candidate: exactly one promotion.
	p = newTestPipeline(Deps{
		Fetcher: &fakeFetcher{articles: candidates("Flamengo anuncia reforço")},
		Store:   newFakeStore(),
		Social:  social,
		Catalog: catalog,
	})
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if catalog.calls != 1 || len(social.productCalls) != 1 {
		t.Fatalf("expected exactly one promotion, catalog=%d product_posts=%d",
			catalog.calls, len(social.productCalls))
	}
	last := result.SocialPosts[len(result.SocialPosts)-1]
	if last.Title != "Camisa Flamengo I" || !last.Published {
		t.Fatalf("unexpected promotion outcome %+v", last)
	}
}

func TestRunPublishFailureDoesNotBlockLaterArticles(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico", "Flamengo anuncia reforço")}
	contentStore := newFakeStore()
	social := &fakeSocial{failTitles: map[string]bool{"Flamengo vence clássico": true}}

	p := newTestPipeline(Deps{Fetcher: fetcher, Store: contentStore, Social: social})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.SavedArticles) != 2 {
		t.Fatalf("both articles must be saved, got %d", len(result.SavedArticles))
	}
	if len(result.SocialPosts) != 2 || result.SocialPosts[0].Published || !result.SocialPosts[1].Published {
		t.Fatalf("unexpected outcomes %+v", result.SocialPosts)
	}
}

func TestRunDedupLookupErrorIsolatesItem(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico", "Flamengo anuncia reforço")}
	contentStore := newFakeStore()
	contentStore.lookupFail["Flamengo vence clássico"] = true

	p := newTestPipeline(Deps{Fetcher: fetcher, Store: contentStore})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("lookup error must not abort the run: %v", err)
	}
	if len(result.SavedArticles) != 1 || result.SavedArticles[0].Title != "Flamengo anuncia reforço" {
		t.Fatalf("expected only the healthy item saved, got %+v", result.SavedArticles)
	}
}

func TestRunInsertFailureExcludesFromSaved(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence clássico")}
	contentStore := newFakeStore()
	contentStore.insertFail["Flamengo vence clássico"] = true
	social := &fakeSocial{}

	p := newTestPipeline(Deps{Fetcher: fetcher, Store: contentStore, Social: social})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.SavedArticles) != 0 {
		t.Fatalf("failed insert must not count as saved")
	}
	if len(social.articleCalls) != 0 {
		t.Fatalf("unsaved article must not be announced")
	}
}

func TestRunDerivesRecordFields(t *testing.T) {
	fetcher := &fakeFetcher{articles: candidates("Flamengo vence! (de virada)")}
	contentStore := newFakeStore()

	p := newTestPipeline(Deps{Fetcher: fetcher, Store: contentStore})
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec := contentStore.records[0]
	if rec.UID != "flamengo-vence-de-virada" {
		t.Fatalf("unexpected uid %q", rec.UID)
	}
	if !rec.IsPublished || rec.Category != store.CategoryNews {
		t.Fatalf("unexpected record flags %+v", rec)
	}
	if rec.Date.IsZero() {
		t.Fatalf("record date must default when candidate has none")
	}
}
