package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"treasurechain/core/types"
)

const requestTimeout = 15 * time.Second

// apiError mirrors the JSON error body served by treasured.
type apiError struct {
	Status  int
	Message string `json:"error"`
	Class   string `json:"class"`
}

func (e *apiError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Class)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(strings.TrimSpace(base), "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

func (c *client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// getRaw returns the response body unmodified for display.
func (c *client) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// nonce returns the next nonce for addr. Unknown accounts start at zero.
func (c *client) nonce(ctx context.Context, addr string) (uint64, error) {
	var out struct {
		Nonce uint64 `json:"nonce"`
	}
	err := c.do(ctx, http.MethodGet, "/accounts/"+addr, nil, &out)
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return out.Nonce, nil
}

func (c *client) submit(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	var receipt types.Receipt
	if err := c.do(ctx, http.MethodPost, "/tx", tx, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
