package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentEngine/internal/ports"

	"ContentEngine/internal/config"
)

// remoteDimension is fixed by the text-embedding-004 model.
const remoteDimension = 768

// RemoteProvider embeds text through the Gemini batchEmbedContents REST API.
// Returned vectors are not guaranteed unit-length; downstream cosine math
// must not assume normalization.
type RemoteProvider struct {
	endpoint  string
	model     string
	apiKey    string
	batchSize int
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.EmbeddingProvider = (*RemoteProvider)(nil)

// NewRemoteProvider builds the API-backed provider.
func NewRemoteProvider(cfg config.RemoteEmbedConfig, batchSize int, logger *slog.Logger) *RemoteProvider {
	return &RemoteProvider{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		batchSize: batchSize,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

// Name identifies the provider in logs and reports.
func (p *RemoteProvider) Name() string {
	return ProviderRemote
}

// Dimension returns the fixed vector dimension of the remote model.
func (p *RemoteProvider) Dimension() int {
	return remoteDimension
}

type embedContentRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
	TaskType string `json:"taskType"`
}

type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// EmbedTexts sends texts in fixed-size batches, one after another, and
// concatenates the results back into input order. Empty input returns empty
// output without any request.
func (p *RemoteProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	p.logger.Info("embedding texts", "provider", p.Name(), "count", len(texts), "batch_size", p.batchSize)

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", start/p.batchSize+1, err)
		}
		vectors = append(vectors, batch...)
		p.logger.Debug("embedding batch done", "batch", start/p.batchSize+1)
	}

	return vectors, nil
}

func (p *RemoteProvider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := batchEmbedRequest{Requests: make([]embedContentRequest, 0, len(texts))}
	for _, text := range texts {
		req := embedContentRequest{
			Model:    "models/" + p.model,
			TaskType: "RETRIEVAL_DOCUMENT",
		}
		req.Content.Parts = []struct {
			Text string `json:"text"`
		}{{Text: text}}
		payload.Requests = append(payload.Requests, req)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", p.endpoint, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("embedding api %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded batchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding api returned %d vectors for %d texts",
			len(decoded.Embeddings), len(texts))
	}

	vectors := make([][]float32, 0, len(texts))
	for _, emb := range decoded.Embeddings {
		vectors = append(vectors, emb.Values)
	}
	return vectors, nil
}
