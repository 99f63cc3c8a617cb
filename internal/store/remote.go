package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/ipquiz/internal/quiz"
)

// PINHeader carries the admin PIN on mutating API requests.
const PINHeader = "X-Quiz-PIN"

// RemoteStore talks to an `ipquiz serve` instance.
type RemoteStore struct {
	baseURL string
	pin     string
	client  *http.Client
}

var _ Repo = (*RemoteStore)(nil)

// NewRemoteStore creates a client for the API at baseURL. pin is sent with
// requests that need admin rights.
func NewRemoteStore(baseURL, pin string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		pin:     pin,
		client:  client,
	}
}

func (r *RemoteStore) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.pin != "" {
		req.Header.Set(PINHeader, r.pin)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (r *RemoteStore) LoadQuestions(ctx context.Context) (quiz.Bank, error) {
	bank := quiz.Bank{}
	if err := r.do(ctx, http.MethodGet, "/api/questions", nil, &bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (r *RemoteStore) SaveQuestions(ctx context.Context, bank quiz.Bank) error {
	if bank == nil {
		bank = quiz.Bank{}
	}
	return r.do(ctx, http.MethodPut, "/api/questions", bank, nil)
}

func (r *RemoteStore) LoadHints(ctx context.Context) (quiz.HintMap, error) {
	hints := quiz.HintMap{}
	if err := r.do(ctx, http.MethodGet, "/api/hints", nil, &hints); err != nil {
		return nil, err
	}
	return hints, nil
}

func (r *RemoteStore) SaveHints(ctx context.Context, hints quiz.HintMap) error {
	if hints == nil {
		hints = quiz.HintMap{}
	}
	return r.do(ctx, http.MethodPut, "/api/hints", hints, nil)
}

// PINPayload is the body of the /api/pin endpoints.
type PINPayload struct {
	Hash string `json:"hash"`
}

func (r *RemoteStore) LoadPINHash(ctx context.Context) (string, error) {
	var p PINPayload
	if err := r.do(ctx, http.MethodGet, "/api/pin", nil, &p); err != nil {
		return "", err
	}
	if p.Hash == "" {
		return "", ErrNotFound
	}
	return p.Hash, nil
}

func (r *RemoteStore) SavePINHash(ctx context.Context, hash string) error {
	return r.do(ctx, http.MethodPut, "/api/pin", PINPayload{Hash: hash}, nil)
}

func (r *RemoteStore) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
