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

	"ContentEngine/internal/config"
	"ContentEngine/internal/pipeline"
	"ContentEngine/internal/ports"
)

// localDimension is fixed by the all-minilm model.
const localDimension = 384

// LocalProvider embeds text through a local Ollama server. No credential is
// required. Vectors are normalized to unit length before being returned.
type LocalProvider struct {
	endpoint  string
	model     string
	batchSize int
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.EmbeddingProvider = (*LocalProvider)(nil)

// NewLocalProvider builds the local-model provider.
func NewLocalProvider(cfg config.LocalEmbedConfig, batchSize int, logger *slog.Logger) *LocalProvider {
	return &LocalProvider{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		batchSize: batchSize,
		client:    &http.Client{Timeout: 120 * time.Second},
		logger:    logger,
	}
}

// Name identifies the provider in logs and reports.
func (p *LocalProvider) Name() string {
	return ProviderLocal
}

// Dimension returns the fixed vector dimension of the local model.
func (p *LocalProvider) Dimension() int {
	return localDimension
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedTexts embeds every text through the local server, batch by batch, and
// returns unit-length vectors in input order. Empty input returns empty
// output without any request.
func (p *LocalProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
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
		for _, text := range texts[start:end] {
			vector, err := p.embedOne(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("text %d: %w", len(vectors), err)
			}
			vectors = append(vectors, pipeline.Normalize(vector))
		}
	}

	return vectors, nil
}

func (p *LocalProvider) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/embeddings", bytes.NewReader(body))
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
		return nil, fmt.Errorf("local model %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Embedding) == 0 {
		return nil, fmt.Errorf("local model returned empty embedding")
	}
	return decoded.Embedding, nil
}
