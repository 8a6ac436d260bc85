package api

import (
	"context"
	"net/http"
	"net/url"

	"lacsverts/internal/types"
)

// Lakes lists all lakes. Anonymous.
func (c *Client) Lakes(ctx context.Context) ([]types.Lake, error) {
	var lakes []types.Lake
	if err := c.do(ctx, http.MethodGet, "/lakes", "", nil, &lakes); err != nil {
		return nil, err
	}
	return lakes, nil
}

// Lake fetches a single lake. Anonymous.
func (c *Client) Lake(ctx context.Context, id string) (*types.Lake, error) {
	var lake types.Lake
	if err := c.do(ctx, http.MethodGet, "/lakes/"+url.PathEscape(id), "", nil, &lake); err != nil {
		return nil, err
	}
	return &lake, nil
}

// Reports lists the reports visible to the session.
func (c *Client) Reports(ctx context.Context, token string) ([]types.Report, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var reports []types.Report
	if err := c.do(ctx, http.MethodGet, "/reports", token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// LakeReports lists the reports filed against one lake. Anonymous.
func (c *Client) LakeReports(ctx context.Context, lakeID string) ([]types.Report, error) {
	var reports []types.Report
	if err := c.do(ctx, http.MethodGet, "/reports/lake/"+url.PathEscape(lakeID), "", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateReport submits a report on behalf of the session.
func (c *Client) CreateReport(ctx context.Context, token string, report types.NewReport) (*types.Report, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var created types.Report
	if err := c.do(ctx, http.MethodPost, "/reports", token, report, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Awareness lists the published awareness posts. Anonymous.
func (c *Client) Awareness(ctx context.Context) ([]types.AwarenessPost, error) {
	var posts []types.AwarenessPost
	if err := c.do(ctx, http.MethodGet, "/awareness", "", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Profile exchanges a session identifier from the identity provider for the
// user's profile. The identifier is sent as X-Session-ID.
func (c *Client) Profile(ctx context.Context, sessionID string) (*types.Profile, error) {
	if err := requireToken(sessionID); err != nil {
		return nil, err
	}
	var profile types.Profile
	if err := c.do(ctx, http.MethodPost, "/auth/profile", sessionID, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
