package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SearchResult is a single scored hit from the hosted vector store.
type SearchResult struct {
	FileID   string
	Filename string
	Score    float64
	Text     string
}

type searchRequest struct {
	Query         string `json:"query"`
	MaxNumResults int    `json:"max_num_results,omitempty"`
}

type searchResponse struct {
	Data []struct {
		FileID   string  `json:"file_id"`
		Filename string  `json:"filename"`
		Score    float64 `json:"score"`
		Content  []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// SearchVectorStore queries the hosted vector store and returns scored hits.
// Chunk text parts are concatenated per hit; hits without text are dropped.
func (c *Client) SearchVectorStore(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if c.cfg.VectorStoreID == "" {
		return nil, fmt.Errorf("vector store id is not configured")
	}
	if maxResults <= 0 {
		maxResults = c.cfg.SearchResults
	}

	reqBody := searchRequest{Query: query, MaxNumResults: maxResults}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/vector_stores/%s/search", c.cfg.OpenAIBaseURL, c.cfg.VectorStoreID)

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := c.newRequest(ctx, url, jsonBody)
		if err != nil {
			return nil, err
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			c.logger.Warn("Vector store transport error, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}

		if retryableStatus(r.StatusCode) {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			c.logger.Warn("Vector store search unavailable, retrying", zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		}

		resp = r
		break
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from vector store: %w", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector store status %s: %s", resp.Status, string(bodyBytes))
	}

	var sr searchResponse
	if err := json.Unmarshal(bodyBytes, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(sr.Data))
	for _, hit := range sr.Data {
		var text strings.Builder
		for _, part := range hit.Content {
			if part.Type != "text" {
				continue
			}
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(part.Text)
		}
		if text.Len() == 0 {
			continue
		}
		results = append(results, SearchResult{
			FileID:   hit.FileID,
			Filename: hit.Filename,
			Score:    hit.Score,
			Text:     text.String(),
		})
	}
	return results, nil
}
