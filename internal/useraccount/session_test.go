package useraccount

import (
	"context"
	"testing"
	"time"
)

func TestResolveReturnsSessionWithExtraPermissions(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleAdmin)
	now := time.Now()

	login, apiErr := store.Login(context.Background(), LoginRequest{
		Handle:     "alice",
		Password:   "hunter2",
		DeviceUUID: "aaaaaaaa-1111",
		DeviceType: DeviceIOS,
	}, now)
	if apiErr != nil {
		t.Fatalf("Login: %v", apiErr)
	}

	if _, err := store.db.ExecContext(context.Background(),
		`INSERT INTO user_extra_permission (user_id, permission, expires_at) VALUES (?, ?, NULL)`,
		"u1", "manage_invites"); err != nil {
		t.Fatalf("seed extra permission: %v", err)
	}
	if _, err := store.db.ExecContext(context.Background(),
		`INSERT INTO user_extra_permission (user_id, permission, expires_at) VALUES (?, ?, ?)`,
		"u1", "expired_perm", now.Add(-time.Hour)); err != nil {
		t.Fatalf("seed expired permission: %v", err)
	}

	sess, apiErr := store.Resolve(context.Background(), login.Token, now.Add(time.Minute))
	if apiErr != nil {
		t.Fatalf("Resolve: %v", apiErr)
	}
	if sess.UserID != "u1" || sess.Role != RoleAdmin || sess.DeviceType != DeviceIOS {
		t.Fatalf("unexpected session: %+v", sess)
	}
	found := false
	for _, p := range sess.Permissions {
		if p == "expired_perm" {
			t.Fatal("expired permission should not be present")
		}
		if p == "manage_invites" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected manage_invites permission in session")
	}
}

func TestResolveUnknownTokenIsUnauthorized(t *testing.T) {
	store := newTestStore(t)
	_, apiErr := store.Resolve(context.Background(), "bogus-token", time.Now())
	if apiErr == nil || apiErr.Kind != "unauthorized" {
		t.Fatalf("expected unauthorized, got %+v", apiErr)
	}
}
