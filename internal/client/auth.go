package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"floreria/internal/dto"
)

type AuthClient struct{ c *Client }

// Login posts form-encoded credentials. A 401 comes back as an *Error whose
// Message is MsgInvalidCredentials; it never triggers the unauthorized hook.
func (a *AuthClient) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out dto.TokenResponse
	err := a.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      strings.NewReader(form.Encode()),
		ctype:     "application/x-www-form-urlencoded",
		anonymous: true,
	}, &out)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Status == http.StatusUnauthorized {
			e.Detail = MsgInvalidCredentials
		}
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	if err := a.c.do(ctx, call{method: http.MethodPost, path: "/auth/register", json: req, anonymous: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current bearer token server-side.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	err := a.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/refresh",
		json:      dto.RefreshRequest{RefreshToken: refreshToken},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := a.c.do(ctx, call{method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) ForgotPassword(ctx context.Context, email string) (*dto.MessageResponse, error) {
	var out dto.MessageResponse
	err := a.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/forgot-password",
		json:      dto.ForgotPasswordRequest{Email: email},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthClient) ResetPassword(ctx context.Context, token, newPassword string) (*dto.MessageResponse, error) {
	var out dto.MessageResponse
	err := a.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/reset-password",
		json:      dto.ResetPasswordRequest{Token: token, NewPassword: newPassword},
		anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
