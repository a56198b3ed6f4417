package useraccount

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pezzottify/catalog-server/internal/sync"
)

func TestSetSettingUpsertsAndAppendsEvent(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	events := sync.New(store.DB(), store.WriteMu())
	ctx := context.Background()

	if apiErr := store.SetSetting(ctx, events, "u1", "theme", json.RawMessage(`"dark"`)); apiErr != nil {
		t.Fatalf("SetSetting: %v", apiErr)
	}
	if apiErr := store.SetSetting(ctx, events, "u1", "theme", json.RawMessage(`"light"`)); apiErr != nil {
		t.Fatalf("SetSetting (update): %v", apiErr)
	}

	value, err := store.GetSetting(ctx, "u1", "theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if string(value) != `"light"` {
		t.Fatalf("expected updated value, got %s", value)
	}

	seq, err := events.CurrentSeq(ctx, "u1")
	if err != nil {
		t.Fatalf("CurrentSeq: %v", err)
	}
	if seq != 2 {
		t.Fatalf("expected two setting_changed events, got seq=%d", seq)
	}
}

func TestListSettingsReturnsAllKeys(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	events := sync.New(store.DB(), store.WriteMu())
	ctx := context.Background()

	_ = store.SetSetting(ctx, events, "u1", "theme", json.RawMessage(`"dark"`))
	_ = store.SetSetting(ctx, events, "u1", "autoplay", json.RawMessage(`true`))

	all, err := store.ListSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 2 || string(all["autoplay"]) != "true" {
		t.Fatalf("unexpected settings map: %+v", all)
	}
}
