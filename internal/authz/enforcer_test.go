package authz

import "testing"

func TestAdminAllowsServerAdmin(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	allowed, err := e.Allows("admin", ServerAdmin)
	if err != nil {
		t.Fatalf("Allows: %v", err)
	}
	if !allowed {
		t.Fatal("expected admin to be granted ServerAdmin")
	}
}

func TestRegularDeniedServerAdmin(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	allowed, err := e.Allows("regular", ServerAdmin)
	if err != nil {
		t.Fatalf("Allows: %v", err)
	}
	if allowed {
		t.Fatal("expected regular to be denied ServerAdmin")
	}
}

func TestRegularAllowsOwnPlaylists(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	allowed, err := e.Allows("regular", OwnPlaylists)
	if err != nil {
		t.Fatalf("Allows: %v", err)
	}
	if !allowed {
		t.Fatal("expected regular to be granted OwnPlaylists")
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	allowed, err := e.Allows("nobody", AccessCatalog)
	if err != nil {
		t.Fatalf("Allows: %v", err)
	}
	if allowed {
		t.Fatal("expected an unrecognized role to be denied")
	}
}
