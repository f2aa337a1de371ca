package social

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/logger"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

// ErrMissingAppSecret is raised when the integrity proof cannot be computed.
// It is a configuration error, not a retryable failure.
var ErrMissingAppSecret = errors.New("facebook app secret is not configured")

// CaptionSource produces short social captions. The rewrite client implements
// it; a nil source means the templated fallback is always used.
type CaptionSource interface {
	Caption(ctx context.Context, title, link string) (string, error)
}

// Publisher posts promotional messages to the Facebook page feed.
type Publisher struct {
	http        httpclient.Client
	endpoint    string
	pageID      string
	accessToken string
	appSecret   string
	siteBaseURL string
	captions    CaptionSource
	log         logger.Logger
}

// NewPublisher builds a Facebook publisher from configuration.
func NewPublisher(cfg *config.Config, client httpclient.Client, captions CaptionSource, log logger.Logger) *Publisher {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Publisher{
		http:        client,
		endpoint:    strings.TrimRight(cfg.GraphEndpoint, "/"),
		pageID:      cfg.FacebookPageID,
		accessToken: cfg.FacebookAccessToken,
		appSecret:   cfg.FacebookAppSecret,
		siteBaseURL: strings.TrimRight(cfg.SiteBaseURL, "/"),
		captions:    captions,
		log:         log,
	}
}

// AppSecretProof computes the per-request integrity proof the Graph API
// requires alongside the access token: hex(HMAC-SHA256(token, key=secret)).
func AppSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// PostArticle announces a newly saved article. All failures are caught, logged
// and reported as false; the publisher never aborts the run.
func (p *Publisher) PostArticle(ctx context.Context, rec domain.ContentRecord) bool {
	link := p.ArticleLink(rec.UID)
	message := p.articleCaption(ctx, rec.Title, link)

	if err := p.postToFeed(ctx, message, link); err != nil {
		p.log.ErrorObj("article social post failed", "social_error", map[string]any{
			"title": rec.Title,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// PostProduct announces the promoted product.
func (p *Publisher) PostProduct(ctx context.Context, product domain.PromotedProduct) bool {
	message := productCaption(product)

	if err := p.postToFeed(ctx, message, product.Link); err != nil {
		p.log.ErrorObj("product social post failed", "social_error", map[string]any{
			"product": product.Title,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

// ArticleLink resolves the canonical site URL for a saved record.
func (p *Publisher) ArticleLink(uid string) string {
	return p.siteBaseURL + "/noticias/" + uid
}

func (p *Publisher) articleCaption(ctx context.Context, title, link string) string {
	if p.captions != nil {
		caption, err := p.captions.Caption(ctx, title, link)
		if err == nil {
			return caption
		}
		p.log.WarnObj("generated caption unavailable, using template", "caption_error", map[string]any{
			"title": title,
			"error": err.Error(),
		})
	}
	return fmt.Sprintf("%s\n\nConfira: %s\n\n#Flamengo #CRF #NacaoRubroNegra", title, link)
}

func productCaption(product domain.PromotedProduct) string {
	if product.FullPrice != "" {
		return fmt.Sprintf("🔥 %s de %s por %s! Garanta o seu: %s\n\n#Flamengo #CRF",
			product.Title, product.FullPrice, product.Price, product.Link)
	}
	if product.Price != "" {
		return fmt.Sprintf("🔥 %s por %s! Garanta o seu: %s\n\n#Flamengo #CRF",
			product.Title, product.Price, product.Link)
	}
	return fmt.Sprintf("🔥 %s! Garanta o seu: %s\n\n#Flamengo #CRF", product.Title, product.Link)
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (p *Publisher) postToFeed(ctx context.Context, message, link string) error {
	if strings.TrimSpace(p.appSecret) == "" {
		return ErrMissingAppSecret
	}
	if strings.TrimSpace(p.accessToken) == "" {
		return fmt.Errorf("facebook access token is not configured")
	}

	form := url.Values{}
	form.Set("message", message)
	if strings.TrimSpace(link) != "" {
		form.Set("link", link)
	}
	form.Set("access_token", p.accessToken)
	form.Set("appsecret_proof", AppSecretProof(p.accessToken, p.appSecret))

	resp, err := p.http.PostForm(ctx, p.endpoint+"/"+p.pageID+"/feed", form)
	if err != nil {
		return fmt.Errorf("feed request: %w", err)
	}

	var decoded graphResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return fmt.Errorf("decode feed response (status %d): %w", resp.StatusCode(), err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("graph error %d (%s): %s", decoded.Error.Code, decoded.Error.Type, decoded.Error.Message)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("feed status %d", resp.StatusCode())
	}

	p.log.DebugObj("feed post accepted", "social_post", map[string]any{"post_id": decoded.ID})
	return nil
}
