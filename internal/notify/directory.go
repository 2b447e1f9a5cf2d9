package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/shift-booking-api/internal/models"
)

// Directory resolves who receives admin broadcasts.
type Directory interface {
	AdminRecipients(ctx context.Context) ([]models.Recipient, error)
}

type roleLister interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// UserDirectory merges statically configured addresses with active admin users.
type UserDirectory struct {
	static []string
	users  roleLister
}

// NewUserDirectory builds a directory. users may be nil.
func NewUserDirectory(static []string, users roleLister) *UserDirectory {
	return &UserDirectory{static: static, users: users}
}

// AdminRecipients returns the deduplicated recipient list, admin users first.
func (d *UserDirectory) AdminRecipients(ctx context.Context) ([]models.Recipient, error) {
	var out []models.Recipient
	seen := map[string]bool{}
	if d.users != nil {
		admins, err := d.users.ListByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("list admin users: %w", err)
		}
		for _, u := range admins {
			key := strings.ToLower(u.Email)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, u.Recipient())
		}
	}
	for _, addr := range d.static {
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Recipient{Name: addr, Email: addr})
	}
	return out, nil
}
