package services

import (
	"context"
	"log"
	"time"

	"cloudnest/config"
	"cloudnest/logger"
	"cloudnest/repositories"
)

// CleanupService deactivates expired share links in the background so
// stale rows do not accumulate and cached tokens do not outlive their
// expiry.
type CleanupService struct {
	links repositories.ShareLinkRepository
	cache repositories.ShareTokenCache
}

func NewCleanupService(links repositories.ShareLinkRepository, cache repositories.ShareTokenCache) *CleanupService {
	return &CleanupService{links: links, cache: cache}
}

// SweepExpiredShareLinks deactivates every link whose expiry has passed
// and drops the matching cache entries. Returns the number of links
// deactivated.
func (s *CleanupService) SweepExpiredShareLinks(ctx context.Context) (int, error) {
	expired, err := s.links.DeactivateExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, err
	}
	for _, link := range expired {
		if err := s.cache.Invalidate(ctx, link.Token); err != nil {
			logger.Debugf("cleanup: failed to invalidate cached token %s: %v", link.Token, err)
		}
	}
	return len(expired), nil
}

// StartCleanupWorkers runs the expired-link sweep on a fixed interval
// until ctx is cancelled.
func (s *CleanupService) StartCleanupWorkers(ctx context.Context) {
	interval := time.Duration(config.AppConfig.Share.CleanupInterval) * time.Second
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.SweepExpiredShareLinks(ctx)
				if err != nil {
					log.Printf("cleanup: expired share link sweep failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("cleanup: deactivated %d expired share links", n)
				}
			}
		}
	}()
}
