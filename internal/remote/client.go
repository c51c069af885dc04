// Package remote is the client side of the sync server's document API. It
// mirrors the store's collections as JSON documents under the user's (or
// group's) tree and batches flushes so a whole snapshot lands atomically.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/model"
)

// DefaultBatchLimit is the number of ops per batch request. One under the
// server's hard cap, leaving room for a trailing marker op if ever needed.
const DefaultBatchLimit = 499

// Config holds the connection settings for the sync server.
type Config struct {
	BaseURL    string
	Token      string
	BatchLimit int           // defaults to DefaultBatchLimit
	Timeout    time.Duration // per-request; defaults to 15s
}

// Client talks to the sync server.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultBatchLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "remote"),
	}
}

// UserOwner is the caller's own document tree.
func UserOwner(uid string) docstore.Owner {
	return docstore.Owner{Kind: docstore.OwnerUser, ID: uid}
}

// GroupOwner is a shared group tree.
func GroupOwner(gid string) docstore.Owner {
	return docstore.Owner{Kind: docstore.OwnerGroup, ID: gid}
}

func ownerPath(owner docstore.Owner) string {
	if owner.Kind == docstore.OwnerGroup {
		return "/api/groups/" + url.PathEscape(owner.ID)
	}
	return "/api/users/" + url.PathEscape(owner.ID)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
}

// ListDocs fetches every document in one collection.
func (c *Client) ListDocs(ctx context.Context, owner docstore.Owner, collection string) ([]docstore.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, ownerPath(owner)+"/"+url.PathEscape(collection), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var docs []docstore.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// GetDoc fetches one document, or nil when it does not exist.
func (c *Client) GetDoc(ctx context.Context, owner docstore.Owner, collection, docID string) (*docstore.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, ownerPath(owner)+"/"+url.PathEscape(collection)+"/"+url.PathEscape(docID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var doc docstore.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// PutDoc stores one document; v is marshalled as the document body.
func (c *Client) PutDoc(ctx context.Context, owner docstore.Owner, collection, docID string, v any) error {
	resp, err := c.do(ctx, http.MethodPut, ownerPath(owner)+"/"+url.PathEscape(collection)+"/"+url.PathEscape(docID), v)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// DeleteDoc removes one document. Absent documents do not error.
func (c *Client) DeleteDoc(ctx context.Context, owner docstore.Owner, collection, docID string) error {
	resp, err := c.do(ctx, http.MethodDelete, ownerPath(owner)+"/"+url.PathEscape(collection)+"/"+url.PathEscape(docID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// BatchWrite applies ops, transparently chunked to the batch limit. Each
// chunk is atomic on the server; the sequence as a whole is not, so callers
// order ops so a partial flush stays consistent (puts before prunes).
func (c *Client) BatchWrite(ctx context.Context, ops []docstore.Op) error {
	for len(ops) > 0 {
		n := len(ops)
		if n > c.cfg.BatchLimit {
			n = c.cfg.BatchLimit
		}
		chunk, rest := ops[:n], ops[n:]

		resp, err := c.do(ctx, http.MethodPost, "/api/batch", map[string]any{"ops": chunk})
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return apiError(resp)
		}
		ops = rest
	}
	return nil
}

// GetGroup fetches a group's metadata, or nil when the group is gone or
// the caller is no longer a member.
func (c *Client) GetGroup(ctx context.Context, gid string) (*model.Group, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/groups/"+url.PathEscape(gid), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var g model.Group
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode group: %w", err)
	}
	return &g, nil
}

// PutGroup creates or updates a group's metadata.
func (c *Client) PutGroup(ctx context.Context, g *model.Group) error {
	resp, err := c.do(ctx, http.MethodPut, "/api/groups/"+url.PathEscape(g.ID), g)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// DeleteGroup dissolves a group. Owner only, enforced server-side.
func (c *Client) DeleteGroup(ctx context.Context, gid string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/groups/"+url.PathEscape(gid), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// FindGroupByInviteCode resolves an invite code to its group, or nil when
// no group matches.
func (c *Client) FindGroupByInviteCode(ctx context.Context, code string) (*model.Group, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/groups/lookup?inviteCode="+url.QueryEscape(code), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var g model.Group
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode group: %w", err)
	}
	return &g, nil
}
