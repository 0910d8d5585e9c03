package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"spelling-service/internal/models"
)

// WordClient consumes the word-bank collaborator's REST surface
// (GET /words/{classId}). The word bank itself is owned elsewhere; this
// service only reads pools for starting runs.
type WordClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWordClient(baseURL string) *WordClient {
	return &WordClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type wordsResponse struct {
	Words []models.Word `json:"words"`
}

// GetWords fetches the word pool for a class.
func (c *WordClient) GetWords(ctx context.Context, classID string) ([]models.Word, error) {
	url := fmt.Sprintf("%s/words/%s", c.baseURL, classID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build words request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch words for class %s: %w", classID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("words service returned status %d for class %s", resp.StatusCode, classID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read words response: %w", err)
	}

	// The collaborator answers either a bare array or {"words": [...]}.
	var wrapped wordsResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Words != nil {
		return wrapped.Words, nil
	}

	var words []models.Word
	if err := json.Unmarshal(body, &words); err != nil {
		return nil, fmt.Errorf("failed to decode words response: %w", err)
	}
	return words, nil
}
