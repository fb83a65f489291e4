// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"net/url"
	"strconv"
)

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]UserInfo, error) {
	var out struct {
		Users []UserInfo `json:"users"`
	}
	if err := c.getJSON(ctx, "admin_users", "/admin/users", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// RegisterUser creates an account.
func (c *Client) RegisterUser(ctx context.Context, u NewUser) error {
	return c.postJSON(ctx, "admin_register", "/admin/register", u, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.delete(ctx, "admin_delete_user", "/admin/user/"+url.PathEscape(username), nil)
}

// Sessions lists all engine-side sessions.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	var out struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := c.getJSON(ctx, "admin_sessions", "/admin/sessions", &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// DeleteSession removes one session and its quota usage.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.delete(ctx, "admin_delete_session", "/admin/session/"+url.PathEscape(sessionID), nil)
}

// ResetSessions removes every session.
func (c *Client) ResetSessions(ctx context.Context) error {
	return c.postJSON(ctx, "admin_reset", "/admin/reset", nil, nil)
}

// Stats fetches engine-wide usage totals.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out struct {
		Stats Stats `json:"stats"`
	}
	if err := c.getJSON(ctx, "admin_stats", "/admin/stats", &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

// ActivityStats fetches activity log aggregates for the charts.
func (c *Client) ActivityStats(ctx context.Context) (*ActivityStats, error) {
	var out struct {
		Stats ActivityStats `json:"stats"`
	}
	if err := c.getJSON(ctx, "admin_activity_stats", "/admin/activities/stats", &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

// Activities fetches one filtered page of the activity log.
func (c *Client) Activities(ctx context.Context, filter ActivityFilter) (*ActivityPage, error) {
	q := url.Values{}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	setNonEmpty(q, "activity_type", filter.ActivityType)
	setNonEmpty(q, "session_id", filter.SessionID)
	setNonEmpty(q, "username", filter.Username)
	setNonEmpty(q, "status", filter.Status)
	setNonEmpty(q, "date_from", filter.DateFrom)
	setNonEmpty(q, "date_to", filter.DateTo)

	path := "/admin/activities"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out ActivityPage
	if err := c.getJSON(ctx, "admin_activities", path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// DefaultLimits fetches the configured default quotas.
func (c *Client) DefaultLimits(ctx context.Context) (*Limits, error) {
	var out struct {
		Limits Limits `json:"limits"`
	}
	if err := c.getJSON(ctx, "admin_default_limits", "/admin/default-limits", &out); err != nil {
		return nil, err
	}
	return &out.Limits, nil
}

// SetDefaultLimits replaces the default quotas.
func (c *Client) SetDefaultLimits(ctx context.Context, limits Limits) error {
	return c.putJSON(ctx, "admin_set_default_limits", "/admin/default-limits", limits, nil)
}

// UserLimits fetches one user's custom quotas; Limits is nil when the user
// inherits the defaults.
func (c *Client) UserLimits(ctx context.Context, username string) (*Limits, error) {
	var out struct {
		Limits *Limits `json:"limits"`
	}
	path := "/admin/user/" + url.PathEscape(username) + "/limits"
	if err := c.getJSON(ctx, "admin_user_limits", path, &out); err != nil {
		return nil, err
	}
	return out.Limits, nil
}

// SetUserLimits assigns custom quotas to one user.
func (c *Client) SetUserLimits(ctx context.Context, username string, limits Limits) error {
	path := "/admin/user/" + url.PathEscape(username) + "/limits"
	return c.putJSON(ctx, "admin_set_user_limits", path, limits, nil)
}

// DeleteUserLimits reverts one user to the default quotas.
func (c *Client) DeleteUserLimits(ctx context.Context, username string) error {
	path := "/admin/user/" + url.PathEscape(username) + "/limits"
	return c.delete(ctx, "admin_delete_user_limits", path, nil)
}

// ReloadLimits asks the engine to re-read its quota configuration.
func (c *Client) ReloadLimits(ctx context.Context) error {
	return c.postJSON(ctx, "admin_reload_limits", "/admin/reload-limits", nil, nil)
}
