package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// Features returns the flags for the session's current org. Failures
// degrade to defaults rather than erroring: a flag outage must not block
// sign-in or navigation.
//
// Responses are epoch-guarded: each fetch is tagged with the org it was
// issued for, and a response landing after the session moved to a
// different org is discarded instead of overwriting the newer org's cache.
func (c *Client) Features(ctx context.Context) models.FeatureFlags {
	orgID := c.store.Current().OrgID
	if orgID == "" {
		return models.DefaultFeatureFlags("", models.FlagsDefaults)
	}

	c.flagsMu.Lock()
	if c.flags != nil && c.flagsOrgID == orgID {
		cached := *c.flags
		c.flagsMu.Unlock()
		return cached
	}
	c.flagsEpoch++
	epoch := c.flagsEpoch
	c.flagsMu.Unlock()

	flags, err := c.fetchFeatures(ctx, orgID)
	if err != nil {
		return models.DefaultFeatureFlags(orgID, models.FlagsDefaults)
	}

	c.flagsMu.Lock()
	defer c.flagsMu.Unlock()

	// Stale response: the session changed org (or another fetch superseded
	// this one) while the request was in flight.
	if epoch != c.flagsEpoch || c.store.Current().OrgID != orgID {
		return flags
	}

	c.flagsOrgID = orgID
	c.flags = &flags
	return flags
}

// HasFeature is the single read path for gating UI and flows. Unknown
// names are off.
func (c *Client) HasFeature(ctx context.Context, name string) bool {
	flags := c.Features(ctx)
	return flags.HasFeature(name)
}

// SetFeature toggles a flag for the session's org. The cache is updated
// only after the backend confirms the write; a rejected write leaves the
// cache alone and reports ok=false without erroring.
func (c *Client) SetFeature(ctx context.Context, name string, enabled bool) bool {
	orgID := c.store.Current().OrgID
	if orgID == "" {
		return false
	}

	payload := dto.SetFeatureRequest{Enabled: enabled}
	path := fmt.Sprintf("/api/v1/orgs/%s/features/%s", orgID, name)

	resp, err := c.do(ctx, http.MethodPost, path, payload, true)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body dto.SetFeatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}

	if body.OK {
		c.flagsMu.Lock()
		if c.flagsOrgID == orgID && c.flags != nil {
			c.flags.Flags = body.Flags
			c.flags.State = models.FlagsMaterialized
		}
		c.flagsMu.Unlock()
	}

	return body.OK
}

func (c *Client) fetchFeatures(ctx context.Context, orgID string) (models.FeatureFlags, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/features", orgID)

	resp, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return models.FeatureFlags{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FeatureFlags{}, fmt.Errorf("feature fetch failed: status %d", resp.StatusCode)
	}

	var body dto.FeatureFlagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.FeatureFlags{}, fmt.Errorf("failed to decode flags: %w", err)
	}

	return models.FeatureFlags{
		OrgID: body.OrgID,
		State: body.State,
		Flags: body.Flags,
	}, nil
}

// invalidateFlags drops the cache and bumps the epoch so in-flight fetches
// for the previous org cannot land on the new one.
func (c *Client) invalidateFlags() {
	c.flagsMu.Lock()
	c.flags = nil
	c.flagsOrgID = ""
	c.flagsEpoch++
	c.flagsMu.Unlock()
}
