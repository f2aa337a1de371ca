package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

// Client reads the product catalog from the headless CMS. The pipeline never
// writes here; only the most recently published product is consumed.
type Client struct {
	http     httpclient.Client
	endpoint string
	token    string
}

// NewClient builds a catalog client from configuration.
func NewClient(cfg *config.Config, client httpclient.Client) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(10 * time.Second)
	}
	return &Client{
		http:     client,
		endpoint: strings.TrimRight(cfg.CatalogEndpoint, "/"),
		token:    cfg.CatalogToken,
	}
}

type searchResponse struct {
	Results []struct {
		Data productData `json:"data"`
	} `json:"results"`
}

type productData struct {
	Title []struct {
		Text string `json:"text"`
	} `json:"title"`
	Price     float64 `json:"price"`
	FullPrice float64 `json:"full_price"`
	Image     struct {
		URL string `json:"url"`
	} `json:"image"`
	Link struct {
		URL string `json:"url"`
	} `json:"link"`
}

// LatestProduct returns the most recently published product document.
func (c *Client) LatestProduct(ctx context.Context) (domain.PromotedProduct, error) {
	if c == nil || c.http == nil {
		return domain.PromotedProduct{}, fmt.Errorf("catalog client is not initialized")
	}
	if c.endpoint == "" {
		return domain.PromotedProduct{}, fmt.Errorf("catalog endpoint is not configured")
	}

	query := url.Values{}
	query.Set("q", `[[at(document.type,"product")]]`)
	query.Set("orderings", "[document.first_publication_date desc]")
	query.Set("pageSize", "1")
	if c.token != "" {
		query.Set("access_token", c.token)
	}

	resp, err := c.http.Get(ctx, c.endpoint+"/documents/search?"+query.Encode(), nil)
	if err != nil {
		return domain.PromotedProduct{}, fmt.Errorf("catalog request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.PromotedProduct{}, fmt.Errorf("catalog status %d", resp.StatusCode())
	}

	var decoded searchResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return domain.PromotedProduct{}, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(decoded.Results) == 0 {
		return domain.PromotedProduct{}, fmt.Errorf("catalog returned no products")
	}

	data := decoded.Results[0].Data
	product := domain.PromotedProduct{
		Title:    firstText(data.Title),
		Price:    formatPrice(data.Price),
		ImageURL: data.Image.URL,
		Link:     data.Link.URL,
	}
	if data.FullPrice > data.Price {
		product.FullPrice = formatPrice(data.FullPrice)
	}
	if product.Title == "" {
		return domain.PromotedProduct{}, fmt.Errorf("catalog product has no title")
	}
	return product, nil
}

func firstText(parts []struct {
	Text string `json:"text"`
}) string {
	for _, p := range parts {
		if text := strings.TrimSpace(p.Text); text != "" {
			return text
		}
	}
	return ""
}

func formatPrice(value float64) string {
	if value <= 0 {
		return ""
	}
	return strings.Replace(fmt.Sprintf("R$ %.2f", value), ".", ",", 1)
}
