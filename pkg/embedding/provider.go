// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

// Provider generates embeddings for text.
type Provider interface {
	// Embed returns a unit-length embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	// Type is "ollama" (default) or "mock".
	Type string

	// BaseURL of the Ollama server. Defaults to http://localhost:11434.
	BaseURL string

	// Model is the embedding model. Defaults to nomic-embed-text.
	Model string

	// Dimensions is only used by the mock provider. Defaults to 768.
	Dimensions int

	// Timeout per HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// NewProvider creates the provider named by cfg.Type.
func NewProvider(cfg ProviderConfig, logger *slog.Logger) (Provider, error) {
	switch strings.ToLower(cfg.Type) {
	case "ollama", "":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Timeout, logger), nil
	case "mock":
		dims := cfg.Dimensions
		if dims <= 0 {
			dims = DefaultDimensions
		}
		return NewMockProvider(dims), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, mock)", cfg.Type)
	}
}

// Defaults for the Ollama provider.
const (
	DefaultOllamaURL  = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultDimensions = 768
)

// MockProvider generates deterministic embeddings from a text hash. The
// vectors carry no meaning; they only keep tests and dry runs offline.
type MockProvider struct {
	dimension int
}

// NewMockProvider creates a mock provider producing vectors of dimension size.
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

// Embed returns a normalized pseudo-random vector derived from text.
func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash := hashString(text)
	vec := make([]float32, m.dimension)
	for i := range vec {
		val := float32((hash+uint64(i)*7919)%10000) / 10000.0
		vec[i] = val*2.0 - 1.0
	}
	return normalize(vec), nil
}

func hashString(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}

// OllamaProvider calls the /api/embeddings endpoint of an Ollama server.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates an Ollama provider. Empty arguments take the
// package defaults.
func NewOllamaProvider(baseURL, model string, timeout time.Duration, logger *slog.Logger) *OllamaProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Model returns the configured model name.
func (o *OllamaProvider) Model() string { return o.model }

// Embed sends text as the prompt and returns the embedding as the server
// produced it. Vectors are stored unscaled; cosine similarity ignores norm.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request (is Ollama running at %s?): %w", o.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ollamaErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(data))
	}

	var embedResp ollamaEmbedResponse
	if err := json.Unmarshal(data, &embedResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}

	vec := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// normalize scales vec to unit L2 norm in place. Zero vectors are returned unchanged.
func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	n := float32(norm)
	for i := range vec {
		vec[i] /= n
	}
	return vec
}
