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
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(vec []float32) float64 {
	var s float64
	for _, v := range vec {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s)
}

func TestMockProvider_Deterministic(t *testing.T) {
	p := NewMockProvider(16)
	a, err := p.Embed(context.Background(), "a heist goes wrong")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "a heist goes wrong")
	require.NoError(t, err)
	c, err := p.Embed(context.Background(), "a robot falls in love")
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.InDelta(t, 1.0, l2(a), 1e-5)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderConfig{Type: "mock"}, nil)
	require.NoError(t, err)
	vec, err := p.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDimensions)

	p, err = NewProvider(ProviderConfig{}, nil)
	require.NoError(t, err)
	ollama, ok := p.(*OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, DefaultModel, ollama.Model())

	_, err = NewProvider(ProviderConfig{Type: "word2vec"}, nil)
	assert.ErrorContains(t, err, "unknown embedding provider")
}

func TestOllamaProvider_Embed(t *testing.T) {
	var got ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "nomic-embed-text", time.Second, nil)
	vec, err := p.Embed(context.Background(), "A young boy discovers a dragon.")
	require.NoError(t, err)

	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, "A young boy discovers a dragon.", got.Prompt)
	assert.Equal(t, []float32{3, 4}, vec)
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusNotFound, `{"error":"model \"nomic-embed-text\" not found"}`, `ollama API error (status 404): model "nomic-embed-text" not found`},
		{"plain error", http.StatusBadGateway, `upstream down`, "ollama API error (status 502): upstream down"},
		{"empty embedding", http.StatusOK, `{"embedding":[]}`, "ollama returned empty embedding"},
		{"bad json", http.StatusOK, `{`, "parse response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "", time.Second, nil).Embed(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, isRetryable(errors.New("ollama API error (status 503): busy")))
	assert.True(t, isRetryable(errors.New("context deadline exceeded")))
	assert.False(t, isRetryable(errors.New("ollama API error (status 404): model not found")))
	assert.False(t, isRetryable(nil))
}

type flakyProvider struct {
	failures int
	calls    int
	err      error
}

func (f *flakyProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func TestEmbedWithRetry(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2}

	t.Run("recovers from transient errors", func(t *testing.T) {
		p := &flakyProvider{failures: 2, err: errors.New("connection reset by peer")}
		retries := 0
		vec, err := embedWithRetry(context.Background(), p, "x", cfg, func(int, error) { retries++ })
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, vec)
		assert.Equal(t, 3, p.calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		p := &flakyProvider{failures: 10, err: errors.New("timeout")}
		_, err := embedWithRetry(context.Background(), p, "x", cfg, nil)
		require.Error(t, err)
		assert.Equal(t, 4, p.calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		p := &flakyProvider{failures: 10, err: errors.New("model not found")}
		_, err := embedWithRetry(context.Background(), p, "x", cfg, nil)
		require.Error(t, err)
		assert.Equal(t, 1, p.calls)
	})
}
