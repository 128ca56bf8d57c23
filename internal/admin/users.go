package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"floreria/internal/dto"
)

var (
	ErrSelfRole   = errors.New("No puedes cambiar tu propio rol")
	ErrSelfDelete = errors.New("No puedes eliminarte a ti mismo")
	ErrBadRole    = errors.New("Rol invalido")
)

// ValidRole reports whether role is user or admin.
func ValidRole(role string) bool { return role == dto.RoleUser || role == dto.RoleAdmin }

// CanDelete refuses deleting your own account.
func CanDelete(selfID, targetID uint) error {
	if selfID == targetID {
		return ErrSelfDelete
	}
	return nil
}

// CanChangeRole refuses changing your own role.
func CanChangeRole(selfID, targetID uint) error {
	if selfID == targetID {
		return ErrSelfRole
	}
	return nil
}

// FilterUsers matches query case-insensitively against username and email.
// An empty query returns users unchanged.
func FilterUsers(users []dto.UserResponse, query string) []dto.UserResponse {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// ── Role draft ────────────────────────────────────────────────────────────────

// RoleAPI submits a role change. client.UsersClient implements it.
type RoleAPI interface {
	UpdateRole(ctx context.Context, id uint, role string) (*dto.UserResponse, error)
}

// RoleDraft stages role changes per user id until Apply is called.
type RoleDraft struct {
	mu      sync.Mutex
	pending map[uint]string
}

func NewRoleDraft() *RoleDraft { return &RoleDraft{pending: make(map[uint]string)} }

// Stage records a proposed role. Staging your own id is refused.
func (d *RoleDraft) Stage(selfID, userID uint, role string) error {
	if err := CanChangeRole(selfID, userID); err != nil {
		return err
	}
	if !ValidRole(role) {
		return ErrBadRole
	}
	d.mu.Lock()
	d.pending[userID] = role
	d.mu.Unlock()
	return nil
}

// Discard drops the staged change for userID, if any.
func (d *RoleDraft) Discard(userID uint) {
	d.mu.Lock()
	delete(d.pending, userID)
	d.mu.Unlock()
}

// Pending returns the staged role for userID.
func (d *RoleDraft) Pending(userID uint) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.pending[userID]
	return r, ok
}

func (d *RoleDraft) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// ApplyResult reports what Apply did per user id.
type ApplyResult struct {
	Applied []dto.UserResponse
	Failed  map[uint]error
}

// Apply submits every staged change in ascending id order. Successful entries
// are cleared; failed ones stay staged so the user can retry.
func (d *RoleDraft) Apply(ctx context.Context, api RoleAPI, selfID uint) (*ApplyResult, error) {
	d.mu.Lock()
	ids := make([]uint, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	snapshot := make(map[uint]string, len(d.pending))
	for id, r := range d.pending {
		snapshot[id] = r
	}
	d.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	res := &ApplyResult{Failed: map[uint]error{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := CanChangeRole(selfID, id); err != nil {
			res.Failed[id] = err
			continue
		}
		u, err := api.UpdateRole(ctx, id, snapshot[id])
		if err != nil {
			res.Failed[id] = err
			continue
		}
		res.Applied = append(res.Applied, *u)
		d.mu.Lock()
		if d.pending[id] == snapshot[id] {
			delete(d.pending, id)
		}
		d.mu.Unlock()
	}
	if len(res.Failed) > 0 {
		return res, fmt.Errorf("%d cambio(s) de rol no se aplicaron", len(res.Failed))
	}
	return res, nil
}
