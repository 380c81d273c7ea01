package gateway

import (
	"context"
	"net/http"
	"net/url"

	"planner/internal/model"
)

// Login exchanges credentials for a token using the OAuth2 password form.
// Persisting the token is the caller's job.
func (c *Client) Login(ctx context.Context, email, password string) (model.Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	return call[model.Token](ctx, c, request{
		op:       "Login",
		method:   http.MethodPost,
		path:     "/auth/login",
		form:     form,
		fallback: "Login failed",
	})
}

func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (model.User, error) {
	return call[model.User](ctx, c, request{
		op:       "Signup",
		method:   http.MethodPost,
		path:     "/auth/signup",
		body:     req,
		fallback: "Signup failed",
	})
}

// Me fetches the profile of the token holder.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	return call[model.User](ctx, c, request{
		op:       "Me",
		method:   http.MethodGet,
		path:     "/auth/me",
		fallback: "Failed to fetch profile",
	})
}
