package useraccount

import (
	"context"
	"testing"
	"time"
)

func TestRedeemInviteTokenIssuesAuthToken(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	now := time.Now()

	inv, err := store.CreateInviteToken(context.Background(), "u1", "u-admin", time.Hour, now)
	if err != nil {
		t.Fatalf("CreateInviteToken: %v", err)
	}

	res, apiErr := store.RedeemInviteToken(context.Background(), inv.Token, LoginRequest{
		DeviceUUID: "new-device-uuid-1",
		DeviceType: DeviceAndroid,
	}, now)
	if apiErr != nil {
		t.Fatalf("RedeemInviteToken: %v", apiErr)
	}
	if res.UserID != "u1" || res.Token == "" {
		t.Fatalf("unexpected redeem result: %+v", res)
	}
}

func TestRedeemInviteTokenTwiceIsGone(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	now := time.Now()

	inv, err := store.CreateInviteToken(context.Background(), "u1", "u-admin", time.Hour, now)
	if err != nil {
		t.Fatalf("CreateInviteToken: %v", err)
	}
	req := LoginRequest{DeviceUUID: "new-device-uuid-1", DeviceType: DeviceAndroid}
	if _, apiErr := store.RedeemInviteToken(context.Background(), inv.Token, req, now); apiErr != nil {
		t.Fatalf("first redeem: %v", apiErr)
	}

	_, apiErr := store.RedeemInviteToken(context.Background(), inv.Token, req, now.Add(time.Minute))
	if apiErr == nil || apiErr.Kind != "gone" {
		t.Fatalf("expected a gone error on reuse, got %+v", apiErr)
	}
}

func TestRedeemExpiredInviteTokenIsGone(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	now := time.Now()

	inv, err := store.CreateInviteToken(context.Background(), "u1", "u-admin", time.Minute, now)
	if err != nil {
		t.Fatalf("CreateInviteToken: %v", err)
	}

	_, apiErr := store.RedeemInviteToken(context.Background(), inv.Token, LoginRequest{
		DeviceUUID: "new-device-uuid-1",
		DeviceType: DeviceAndroid,
	}, now.Add(time.Hour))
	if apiErr == nil || apiErr.Kind != "gone" {
		t.Fatalf("expected a gone error for an expired invite, got %+v", apiErr)
	}
}
