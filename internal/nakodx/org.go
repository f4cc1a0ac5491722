package nakodx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
)

// AuthOrg is one authenticated org identity known to the CLI.
type AuthOrg struct {
	Alias    string `json:"alias"`
	Username string `json:"username"`
	OrgID    string `json:"orgId"`
}

// ResolveOrgID resolves the identity of the active org by reading the
// configured target (alias or username) and matching it against the
// authenticated orgs. The target can change between commands, so this
// runs at the start of every cache-sensitive operation.
//
// Failures degrade to "": without an identity there is no cache
// partition key, and downstream bypasses caching for the operation.
func (c *Client) ResolveOrgID(ctx context.Context) string {
	l := log.FromContext(ctx)

	target, err := c.targetOrg(ctx)
	if err != nil {
		l.Warnf("resolve target org: %v", err)
		return ""
	}
	if target == "" {
		l.Debug("no target org configured")
		return ""
	}

	orgs, err := c.listOrgs(ctx)
	if err != nil {
		l.Warnf("list authenticated orgs: %v", err)
		return ""
	}
	for _, o := range orgs {
		if o.Alias == target || o.Username == target {
			return o.OrgID
		}
	}
	l.Debug("target org not authenticated", "target", target)
	return ""
}

// targetOrg reads the configured target org alias or username.
// Returns "" when none is configured.
func (c *Client) targetOrg(ctx context.Context) (string, error) {
	raw, err := c.run(ctx, "config", "get", "target-org")
	if err != nil {
		return "", err
	}
	var resp struct {
		Result []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parse config get result: %w", err)
	}
	for _, entry := range resp.Result {
		if entry.Name == "target-org" {
			return entry.Value, nil
		}
	}
	return "", nil
}

// listOrgs lists all authenticated org identities.
func (c *Client) listOrgs(ctx context.Context) ([]AuthOrg, error) {
	raw, err := c.run(ctx, "org", "list")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Result []AuthOrg `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse org list: %w", err)
	}
	return resp.Result, nil
}
