package social

import (
	"context"
	"errors"
	neturl "net/url"
	"strings"
	"testing"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient captures the posted form.
type stubHTTPClient struct {
	resp    stubHTTPResponse
	err     error
	lastURL string
	form    neturl.Values
	calls   int
}

func (s *stubHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("not implemented")
}

func (s *stubHTTPClient) PostForm(_ context.Context, url string, form neturl.Values) (httpclient.Response, error) {
	s.calls++
	s.lastURL = url
	s.form = form
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubCaptions struct {
	caption string
	err     error
}

func (s stubCaptions) Caption(context.Context, string, string) (string, error) {
	return s.caption, s.err
}

func publisherConfig() *config.Config {
	return &config.Config{
		GraphEndpoint:       "https://graph.example/v19.0",
		FacebookPageID:      "123",
		FacebookAccessToken: "page-token",
		FacebookAppSecret:   "app-secret",
		SiteBaseURL:         "https://www.orubronegronews.com",
	}
}

func TestAppSecretProof(t *testing.T) {
	got := AppSecretProof("page-token", "app-secret")
	want := "d8b448b9cc7d64c51098271805b3cc20b5b715e52bd587eb71b610259587c856"
	if got != want {
		t.Fatalf("AppSecretProof = %s, want %s", got, want)
	}
}

func TestPostArticleSendsProofAndLink(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(`{"id":"123_456"}`), statusCode: 200}}
	pub := NewPublisher(publisherConfig(), client, nil, nil)

	rec := domain.ContentRecord{Title: "Flamengo vence", UID: "flamengo-vence"}
	if !pub.PostArticle(context.Background(), rec) {
		t.Fatalf("expected successful post")
	}

	if client.lastURL != "https://graph.example/v19.0/123/feed" {
		t.Fatalf("unexpected endpoint %s", client.lastURL)
	}
	if got := client.form.Get("appsecret_proof"); got != AppSecretProof("page-token", "app-secret") {
		t.Fatalf("wrong appsecret_proof %s", got)
	}
	if got := client.form.Get("link"); got != "https://www.orubronegronews.com/noticias/flamengo-vence" {
		t.Fatalf("wrong link %s", got)
	}
	message := client.form.Get("message")
	if !strings.Contains(message, "Flamengo vence") || !strings.Contains(message, "#Flamengo") {
		t.Fatalf("templated caption missing pieces: %q", message)
	}
}

func TestPostArticlePrefersGeneratedCaption(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(`{"id":"1"}`), statusCode: 200}}
	pub := NewPublisher(publisherConfig(), client, stubCaptions{caption: "🔴⚫ Mengão venceu!"}, nil)

	pub.PostArticle(context.Background(), domain.ContentRecord{Title: "Flamengo vence", UID: "uid"})
	if got := client.form.Get("message"); got != "🔴⚫ Mengão venceu!" {
		t.Fatalf("expected generated caption, got %q", got)
	}
}

func TestPostArticleFallsBackWhenCaptionFails(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(`{"id":"1"}`), statusCode: 200}}
	pub := NewPublisher(publisherConfig(), client, stubCaptions{err: errors.New("quota")}, nil)

	pub.PostArticle(context.Background(), domain.ContentRecord{Title: "Flamengo vence", UID: "uid"})
	if got := client.form.Get("message"); !strings.Contains(got, "Confira:") {
		t.Fatalf("expected templated fallback, got %q", got)
	}
}

func TestPostArticleMissingAppSecretFails(t *testing.T) {
	cfg := publisherConfig()
	cfg.FacebookAppSecret = ""
	client := &stubHTTPClient{}
	pub := NewPublisher(cfg, client, nil, nil)

	if pub.PostArticle(context.Background(), domain.ContentRecord{Title: "t", UID: "t"}) {
		t.Fatalf("expected failure without app secret")
	}
	if client.calls != 0 {
		t.Fatalf("no request should be issued without the integrity proof")
	}
}

func TestPostArticleGraphErrorIsFalse(t *testing.T) {
	body := `{"error":{"message":"(#200) permission denied","type":"OAuthException","code":200}}`
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(body), statusCode: 403}}
	pub := NewPublisher(publisherConfig(), client, nil, nil)

	if pub.PostArticle(context.Background(), domain.ContentRecord{Title: "t", UID: "t"}) {
		t.Fatalf("expected failure on graph error response")
	}
}

func TestPostProductUsesDiscountFraming(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(`{"id":"1"}`), statusCode: 200}}
	pub := NewPublisher(publisherConfig(), client, nil, nil)

	product := domain.PromotedProduct{
		Title:     "Camisa Flamengo I",
		Price:     "R$ 349,90",
		FullPrice: "R$ 399,90",
		Link:      "https://shop.example/camisa",
	}
	if !pub.PostProduct(context.Background(), product) {
		t.Fatalf("expected successful post")
	}
	message := client.form.Get("message")
	if !strings.Contains(message, "de R$ 399,90 por R$ 349,90") {
		t.Fatalf("expected discount framing, got %q", message)
	}
}
