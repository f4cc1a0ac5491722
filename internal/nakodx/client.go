package nakodx

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client exposes the CLI subcommands ndxr uses as typed operations.
type Client struct {
	Tool string // CLI binary name, usually "nakodx"
	Dir  string // working directory for invocations

	// invoke is swappable in tests.
	invoke func(ctx context.Context, dir, name string, args ...string) (json.RawMessage, error)
}

// NewClient creates a client invoking tool from the given directory.
func NewClient(tool, dir string) *Client {
	return &Client{Tool: tool, Dir: dir, invoke: Invoke}
}

func (c *Client) run(ctx context.Context, args ...string) (json.RawMessage, error) {
	inv := c.invoke
	if inv == nil {
		inv = Invoke
	}
	return inv(ctx, c.Dir, c.Tool, args...)
}

// ListTypes fetches the org's full metadata type catalog.
func (c *Client) ListTypes(ctx context.Context) ([]MetadataType, error) {
	raw, err := c.run(ctx, "metadata", "list-types")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Result struct {
			MetadataObjects []MetadataType `json:"metadataObjects"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse type catalog: %w", err)
	}
	return resp.Result.MetadataObjects, nil
}

// ListItems fetches the items available for one metadata type.
func (c *Client) ListItems(ctx context.Context, typeName string) ([]MetadataItem, error) {
	raw, err := c.run(ctx, "metadata", "list", "--type", typeName)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Result []MetadataItem `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse %s item list: %w", typeName, err)
	}
	return resp.Result, nil
}

// Retrieve downloads one artifact. The raw payload is returned
// alongside the parsed result so failures can attach full diagnostics.
func (c *Client) Retrieve(ctx context.Context, typeName, fullName string) (*RetrieveResult, json.RawMessage, error) {
	raw, err := c.run(ctx, "retrieve", "--type", typeName, "--name", fullName)
	if err != nil {
		return nil, nil, err
	}
	var resp struct {
		Result RetrieveResult `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("parse retrieve result: %w", err)
	}
	return &resp.Result, raw, nil
}
