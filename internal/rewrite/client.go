package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

const rewriteSystemPrompt = `Voce e um redator esportivo. Reescreva a noticia em portugues com um texto original e jornalistico.
Preserve nomes, numeros, placares e citacoes exatamente como no original.
Organize o texto em paragrafos curtos e evite redundancia.
Nao invente fatos que nao estejam no texto fornecido.`

const captionSystemPrompt = `Voce escreve legendas curtas para redes sociais de um site de noticias do Flamengo.
Responda com uma unica legenda com no maximo 280 caracteres, com emojis e 2 ou 3 hashtags.`

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http     *resty.Client
	endpoint string
	model    string
	apiKey   string
}

// NewClient builds a rewriter client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:     httpclient.NewRestyHTTPClient(30 * time.Second),
		endpoint: cfg.OpenAIEndpoint,
		model:    cfg.OpenAIModel,
		apiKey:   cfg.OpenAIKey,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite asks the model for an original rewrite of the article body. Callers
// own the fallback: on any error the original body must be used unchanged.
func (c *Client) Rewrite(ctx context.Context, title, body string) (string, error) {
	user := fmt.Sprintf("Titulo: %s\n\nTexto original:\n%s", title, body)
	return c.complete(ctx, rewriteSystemPrompt, user)
}

// Caption asks the model for a short promotional caption for a link.
func (c *Client) Caption(ctx context.Context, title, link string) (string, error) {
	user := fmt.Sprintf("Noticia: %s\nLink: %s", title, link)
	return c.complete(ctx, captionSystemPrompt, user)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.http == nil {
		return "", fmt.Errorf("rewrite client is not initialized")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("rewrite client misconfigured")
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var decoded chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&decoded).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion returned empty text")
	}
	return text, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
