package remote

import (
	"context"
	"net/url"

	"github.com/partsdesk/storefront/internal/core/domain"
)

func (c *Client) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	var dtos []userDTO
	err := c.do(ctx, request{
		op:          "list users",
		method:      "GET",
		path:        "/users",
		failMessage: "Failed to load users.",
	}, &dtos)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DirectoryUser, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, user domain.NewUser) error {
	body, err := jsonBody(newUserFromDomain(user))
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "create user",
		method:      "POST",
		path:        "/users",
		body:        body,
		failMessage: "Failed to add user.",
	}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, username string, fields map[string]string) error {
	body, err := jsonBody(fields)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "update user",
		method:      "PUT",
		path:        "/users/" + url.PathEscape(username),
		body:        body,
		failMessage: "Failed to update user.",
	}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.do(ctx, request{
		op:          "delete user",
		method:      "DELETE",
		path:        "/users/" + url.PathEscape(username),
		failMessage: "Failed to delete user.",
	}, nil)
}
