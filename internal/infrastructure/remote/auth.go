package remote

import (
	"context"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	body, err := jsonBody(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	err = c.do(ctx, request{
		op:          "login",
		method:      "POST",
		path:        "/auth/login",
		body:        body,
		failMessage: "Something went wrong. Please try again.",
		login:       true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, &domain.RemoteError{Op: "login", Message: "Something went wrong. Please try again."}
	}

	id := resp.User.ID
	if id == "" {
		id = resp.User.MongoID
	}
	username = resp.User.Username
	if username == "" {
		username = resp.User.Name
	}
	role := resp.User.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	return &ports.LoginResult{Session: domain.Session{
		ID:       id,
		Username: username,
		Name:     resp.User.Name,
		Role:     role,
		Token:    resp.Token,
	}}, nil
}

func (c *Client) Register(ctx context.Context, user domain.NewUser) error {
	user.Role = ""
	body, err := jsonBody(newUserFromDomain(user))
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "register",
		method:      "POST",
		path:        "/auth/register",
		body:        body,
		failMessage: "Registration failed. Please try again.",
		login:       true,
	}, nil)
}
