// Package access decides which group a request may read or write.
package access

import (
	"context"
	"errors"

	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/users"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("access to this group is not allowed")
	ErrNoGroups        = errors.New("no groups configured")
)

// Request is the group a caller asked for, by id or by name. Both may be empty.
type Request struct {
	GroupID uint
	Name    string
}

type GroupLookup interface {
	GetGroup(ctx context.Context, id uint) (groups.Group, error)
	FindGroupByName(ctx context.Context, name string) (groups.Group, error)
	FirstGroup(ctx context.Context) (groups.Group, error)
}

// ResolveGroup applies the scoping rules:
//   - writes need a user;
//   - a group user is confined to its own group;
//   - masters and anonymous readers get the requested group by id, else by
//     name, else the first group.
func ResolveGroup(ctx context.Context, lookup GroupLookup, u *users.User, req Request, write bool) (groups.Group, error) {
	if write && u == nil {
		return groups.Group{}, ErrUnauthenticated
	}

	if u != nil && !u.IsMaster() {
		if u.GroupID == nil || (req.GroupID != 0 && req.GroupID != *u.GroupID) {
			return groups.Group{}, ErrForbidden
		}
		return lookup.GetGroup(ctx, *u.GroupID)
	}

	if req.GroupID != 0 {
		return lookup.GetGroup(ctx, req.GroupID)
	}
	if req.Name != "" {
		g, err := lookup.FindGroupByName(ctx, req.Name)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, groups.ErrNotFound) {
			return groups.Group{}, err
		}
	}

	g, err := lookup.FirstGroup(ctx)
	if errors.Is(err, groups.ErrNotFound) {
		return groups.Group{}, ErrNoGroups
	}
	return g, err
}

// CanWriteGroup reports whether u may change content of groupID.
func CanWriteGroup(u *users.User, groupID uint) bool {
	return u != nil && u.CanAccessGroup(groupID)
}
