package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"xoned-commerce/internal/domain"
)

type Role int

const (
	RoleCustomer Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "customer"
}

// ParseRole maps a claim value to a Role. Anything but exactly "admin" is a
// customer.
func ParseRole(value string) Role {
	if value == "admin" {
		return RoleAdmin
	}
	return RoleCustomer
}

// Identity is the normalized view of a verified token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// RequireUser accepts any signed-in identity.
func RequireUser(identity *Identity) error {
	if identity == nil || identity.UserID == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin accepts only identities carrying the admin role.
func RequireAdmin(identity *Identity) error {
	if err := RequireUser(identity); err != nil {
		return err
	}
	if identity.Role != RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// IdentityFromClaims normalizes provider claims. The role lives under
// metadata.public.role, with a top-level "role" claim as fallback.
func IdentityFromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{
		UserID: firstString(claims, "sub", "user_id"),
		Email:  firstString(claims, "email"),
		Name:   firstString(claims, "name", "username"),
	}

	var nested any
	if metadata, ok := claims["metadata"].(map[string]any); ok {
		if public, ok := metadata["public"].(map[string]any); ok {
			nested = public["role"]
		}
	}
	raw := nested
	if !present(nested) {
		raw = claims["role"]
	}
	role, _ := raw.(string)
	id.Role = ParseRole(role)
	return id
}

// present reports whether a claim value is set. A nested role of any other
// type still shadows the top-level claim and resolves to a customer.
func present(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	}
	return true
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
