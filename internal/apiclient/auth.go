package apiclient

import (
	"context"
	"encoding/json"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
)

// TokenResponse is the login endpoint's payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges form-encoded credentials for a bearer token. It bypasses
// the credential check since no session exists yet.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var tokenResp TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		SetResult(&tokenResp).
		Post("/auth/login")
	if err != nil {
		return nil, c.classifyTransportError(err)
	}

	if resp.IsError() {
		var body errorBody
		message := "Nome utente o password non corretti."
		if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Detail != "" {
			message = body.Detail
		}
		return nil, errors.NewAuth(message, nil)
	}

	return &tokenResp, nil
}

// Me fetches the principal behind the given token. The token is passed
// explicitly because login stores it only after this call succeeds.
func (c *Client) Me(ctx context.Context, token string) (*model.Staff, error) {
	var staff model.Staff
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&staff).
		Get("/staff/me")
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	if resp.IsError() {
		return nil, errors.NewAuth("Errore nel recupero informazioni utente", nil)
	}
	return &staff, nil
}
