package services

import (
	"context"
	"testing"
	"time"

	"cloudnest/models"
)

func TestSweepExpiredShareLinks(t *testing.T) {
	setTestConfig(t)

	links := newFakeShareLinkRepo()
	cache := newFakeShareCache()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	links.links[1] = models.ShareLink{ID: 1, FileID: 1, UserID: 1, Token: "tok-old", ExpiresAt: &past, IsActive: true}
	links.links[2] = models.ShareLink{ID: 2, FileID: 2, UserID: 1, Token: "tok-live", ExpiresAt: &future, IsActive: true}
	links.links[3] = models.ShareLink{ID: 3, FileID: 3, UserID: 1, Token: "tok-forever", IsActive: true}
	cache.entries["tok-old"] = links.links[1]

	svc := NewCleanupService(links, cache)
	n, err := svc.SweepExpiredShareLinks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 link deactivated, got %d", n)
	}

	if links.links[1].IsActive {
		t.Fatalf("expected expired link deactivated")
	}
	if !links.links[2].IsActive || !links.links[3].IsActive {
		t.Fatalf("expected unexpired links untouched")
	}
	if _, ok := cache.entries["tok-old"]; ok {
		t.Fatalf("expected cached expired token invalidated")
	}
}

func TestSweepWithNothingExpired(t *testing.T) {
	setTestConfig(t)

	links := newFakeShareLinkRepo()
	svc := NewCleanupService(links, newFakeShareCache())

	n, err := svc.SweepExpiredShareLinks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing deactivated, got %d", n)
	}
}
