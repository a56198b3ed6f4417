package useraccount

import "time"

// Role is a user's base role, mapped to a permission set by internal/authz.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

// DeviceType identifies the kind of client a device row represents.
type DeviceType string

const (
	DeviceWeb     DeviceType = "web"
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
	DeviceUnknown DeviceType = "unknown"
)

// ExtraPermission grants a permission beyond a user's role, with an
// optional expiry (zero value means it never expires).
type ExtraPermission struct {
	Permission string    `json:"permission"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether p has a nonzero expiry that has passed.
func (p ExtraPermission) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// User is one account row.
type User struct {
	ID        string            `json:"id"`
	Handle    string            `json:"handle"`
	Role      Role              `json:"role"`
	Extras    []ExtraPermission `json:"extra_permissions"`
	CreatedAt time.Time         `json:"created_at"`
}

// Credential holds a user's password hash and optional OIDC/RSA bindings.
type Credential struct {
	UserID        string   `json:"-"`
	PasswordHash  string   `json:"-"` // encoded argon2id hash, empty if OIDC-only
	OIDCSubjects  []string `json:"oidc_subjects,omitempty"`
	RSAPublicKeys []string `json:"rsa_public_keys,omitempty"` // PEM-encoded
}

// Device is one client device bound (or formerly bound) to a user.
type Device struct {
	ID         string     `json:"id"`
	UUID       string     `json:"uuid"`
	UserID     string     `json:"user_id,omitempty"` // empty if user deleted
	Type       DeviceType `json:"type"`
	Name       string     `json:"name,omitempty"`
	OSInfo     string     `json:"os_info,omitempty"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
}

// AuthToken is an opaque bearer token bound to one user+device.
type AuthToken struct {
	Token      string    `json:"-"`
	UserID     string    `json:"user_id"`
	DeviceID   string    `json:"device_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// InviteToken is a one-shot, admin-issued credential used to bootstrap a
// new device's auth token without a password.
type InviteToken struct {
	Token     string     `json:"-"`
	UserID    string     `json:"user_id"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Expired reports whether the invite is past its expiry at t.
func (i InviteToken) Expired(t time.Time) bool { return t.After(i.ExpiresAt) }

// Used reports whether the invite has already been redeemed.
func (i InviteToken) Used() bool { return i.UsedAt != nil }

// LoginRequest is POST /auth/login's body.
type LoginRequest struct {
	Handle     string     `json:"handle"`
	Password   string     `json:"password"`
	DeviceUUID string     `json:"device_uuid"`
	DeviceType DeviceType `json:"device_type"`
	DeviceName string     `json:"device_name,omitempty"`
	OSInfo     string     `json:"os_info,omitempty"`
}

// LoginResult is returned to the client and also carries the cookie value.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

// Session is the resolved identity of an authenticated request.
type Session struct {
	UserID      string
	DeviceID    string
	DeviceType  DeviceType
	Token       string
	Role        Role
	Permissions []string
}
