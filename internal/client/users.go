package client

import (
	"context"
	"net/http"

	"floreria/internal/admin"
	"floreria/internal/dto"
)

type UsersClient struct{ c *Client }

var _ admin.UsersAPI = (*UsersClient)(nil)

func (u *UsersClient) List(ctx context.Context, f dto.UserFilter) ([]dto.UserResponse, error) {
	q := pageQuery(f.Skip, f.Limit)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var out []dto.UserResponse
	err := u.c.do(ctx, call{method: http.MethodGet, path: "/users/", query: q}, &out)
	return out, err
}

func (u *UsersClient) Get(ctx context.Context, id uint) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := u.c.do(ctx, call{method: http.MethodGet, path: idPath("/users", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersClient) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := u.c.do(ctx, call{method: http.MethodPut, path: idPath("/users", id), json: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersClient) Delete(ctx context.Context, id uint) error {
	return u.c.do(ctx, call{method: http.MethodDelete, path: idPath("/users", id)}, nil)
}

func (u *UsersClient) UpdateRole(ctx context.Context, id uint, role string) (*dto.UserResponse, error) {
	var out dto.UserResponse
	err := u.c.do(ctx, call{method: http.MethodPut, path: idPath("/users", id, "/role"), json: dto.UpdateRoleRequest{Role: role}}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersClient) UpdatePassword(ctx context.Context, id uint, newPassword string) error {
	return u.c.do(ctx, call{
		method: http.MethodPut,
		path:   idPath("/users", id, "/password"),
		json:   dto.UpdatePasswordRequest{NewPassword: newPassword},
	}, nil)
}
