// SPDX-License-Identifier: MIT

package engine

import "context"

// Login exchanges credentials for a bearer token and identity.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var out LoginResult
	if err := c.postJSON(ctx, "login", "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
