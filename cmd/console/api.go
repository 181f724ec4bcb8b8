package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiClient talks to the adventure API.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func (c *apiClient) testConnection() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *apiClient) listWorlds() ([]turn.WorldSummary, error) {
	var worlds []turn.WorldSummary
	if err := c.do(http.MethodGet, "/api/v1/worlds", nil, http.StatusOK, &worlds); err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	return worlds, nil
}

func (c *apiClient) startGame(req turn.StartRequest) (*turn.StartResponse, error) {
	var resp turn.StartResponse
	if err := c.do(http.MethodPost, "/api/v1/start_game", req, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return &resp, nil
}

func (c *apiClient) makeChoice(req turn.ChoiceRequest) (*turn.Response, error) {
	var resp turn.Response
	if err := c.do(http.MethodPost, "/api/v1/make_choice", req, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return &resp, nil
}

func (c *apiClient) getSession(id uuid.UUID) (*state.Session, error) {
	var s state.Session
	if err := c.do(http.MethodGet, "/api/v1/sessions/"+id.String(), nil, http.StatusOK, &s); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (c *apiClient) do(method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
