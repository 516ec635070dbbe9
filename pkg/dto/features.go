package dto

import "github.com/shopflows/shopflows-api/internal/models"

type FeatureFlagsResponse struct {
	OrgID string           `json:"org_id"`
	State models.FlagState `json:"state"`
	Flags map[string]bool  `json:"flags"`
}

type SetFeatureRequest struct {
	Enabled bool `json:"enabled"`
}

type SetFeatureResponse struct {
	OK    bool            `json:"ok"`
	Flags map[string]bool `json:"flags"`
}
