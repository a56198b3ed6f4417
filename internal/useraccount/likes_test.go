package useraccount

import (
	"context"
	"testing"
	"time"

	"github.com/pezzottify/catalog-server/internal/sync"
)

func TestLikeContentIsIdempotentAndAppendsOneEvent(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	events := sync.New(store.DB(), store.WriteMu())
	ctx := context.Background()
	now := time.Now()

	if apiErr := store.LikeContent(ctx, events, "u1", LikedContentAlbum, "alb_42", now); apiErr != nil {
		t.Fatalf("LikeContent: %v", apiErr)
	}
	if apiErr := store.LikeContent(ctx, events, "u1", LikedContentAlbum, "alb_42", now); apiErr != nil {
		t.Fatalf("LikeContent (repeat): %v", apiErr)
	}

	liked, err := store.IsLiked(ctx, "u1", LikedContentAlbum, "alb_42")
	if err != nil || !liked {
		t.Fatalf("expected album to be liked, err=%v liked=%v", err, liked)
	}

	seq, err := events.CurrentSeq(ctx, "u1")
	if err != nil {
		t.Fatalf("CurrentSeq: %v", err)
	}
	if seq != 1 {
		t.Fatalf("expected exactly one event appended for idempotent likes, got seq=%d", seq)
	}
}

func TestUnlikeContentAppendsEventOnlyWhenPresent(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)
	events := sync.New(store.DB(), store.WriteMu())
	ctx := context.Background()
	now := time.Now()

	if apiErr := store.UnlikeContent(ctx, events, "u1", LikedContentTrack, "trk_1"); apiErr != nil {
		t.Fatalf("UnlikeContent on absent like: %v", apiErr)
	}
	seq, _ := events.CurrentSeq(ctx, "u1")
	if seq != 0 {
		t.Fatalf("expected no event for unliking something never liked, got seq=%d", seq)
	}

	if apiErr := store.LikeContent(ctx, events, "u1", LikedContentTrack, "trk_1", now); apiErr != nil {
		t.Fatalf("LikeContent: %v", apiErr)
	}
	if apiErr := store.UnlikeContent(ctx, events, "u1", LikedContentTrack, "trk_1"); apiErr != nil {
		t.Fatalf("UnlikeContent: %v", apiErr)
	}

	liked, err := store.IsLiked(ctx, "u1", LikedContentTrack, "trk_1")
	if err != nil || liked {
		t.Fatalf("expected track to be unliked, err=%v liked=%v", err, liked)
	}
	seq, _ = events.CurrentSeq(ctx, "u1")
	if seq != 2 {
		t.Fatalf("expected two events (like + unlike), got seq=%d", seq)
	}
}

func TestLikedContentTypeUnknownRoundTrip(t *testing.T) {
	var tpe LikedContentType
	if err := tpe.UnmarshalJSON([]byte(`"not_a_real_type"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if tpe != LikedContentUnknown {
		t.Fatalf("expected unknown content type, got %v", tpe)
	}
	b, err := LikedContentTrack.MarshalJSON()
	if err != nil || string(b) != `"track"` {
		t.Fatalf("MarshalJSON = %s, %v", b, err)
	}
}
