package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driving"
)

// Ensure pageService implements PageService
var _ driving.PageService = (*pageService)(nil)

const indexLockPrefix = "index:"

// pageService orchestrates one chat page load: URL reconstruction, session
// derivation, lazy indexing and history retrieval.
//
// Lazy indexing hands each distinct URL to the indexer at most once per
// lifetime of the membership set. The URL is only recorded after a
// successful ingestion, so a failed ingestion is retried on the next visit.
// Concurrent first visits are serialised through a per-URL distributed lock.
type pageService struct {
	membership driven.MembershipStore
	indexer    driven.ContextIndexer
	history    driven.HistoryStore
	lock       driven.DistributedLock
	metrics    driven.PageMetrics
	logger     *slog.Logger

	policy          domain.SessionPolicy
	historyAmount   int
	lockTTL         time.Duration
	historyFailOpen bool
}

// PageServiceConfig holds dependencies and settings for the page service.
type PageServiceConfig struct {
	Membership driven.MembershipStore
	Indexer    driven.ContextIndexer
	History    driven.HistoryStore
	Lock       driven.DistributedLock // Optional: without it concurrent first visits may both ingest
	Metrics    driven.PageMetrics     // Optional
	Logger     *slog.Logger

	SessionPolicy   domain.SessionPolicy // Default: page
	HistoryAmount   int                  // Default: domain.HistoryAmount
	LockTTL         time.Duration        // Default: 2m, should exceed the slowest ingestion
	HistoryFailOpen bool                 // Render with empty history when the history store fails
}

// NewPageService creates a new PageService
func NewPageService(cfg PageServiceConfig) driving.PageService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := cfg.SessionPolicy
	if !policy.IsValid() {
		policy = domain.SessionPolicyPage
	}

	amount := cfg.HistoryAmount
	if amount <= 0 {
		amount = domain.HistoryAmount
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}

	return &pageService{
		membership:      cfg.Membership,
		indexer:         cfg.Indexer,
		history:         cfg.History,
		lock:            cfg.Lock,
		metrics:         cfg.Metrics,
		logger:          logger,
		policy:          policy,
		historyAmount:   amount,
		lockTTL:         lockTTL,
		historyFailOpen: cfg.HistoryFailOpen,
	}
}

// Load prepares the page view for the given route segments and session cookie.
func (s *pageService) Load(ctx context.Context, req driving.PageRequest) (view *domain.PageView, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObservePageLoad(time.Since(start), err)
		}
	}()

	if len(req.Segments) == 0 {
		return nil, domain.ErrMissingRouteSegments
	}

	url, err := domain.ReconstructURL(req.Segments)
	if err != nil {
		return nil, err
	}

	sessionID := domain.DeriveSessionID(s.policy, url, req.SessionToken)
	view = &domain.PageView{URL: url, SessionID: sessionID}

	// Indexing and history are independent; both must finish before render.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		outcome, err := s.ensureIndexed(gctx, url)
		if err != nil {
			return err
		}
		view.IndexOutcome = outcome
		if s.metrics != nil {
			s.metrics.ObserveIndexOutcome(outcome)
		}
		return nil
	})

	g.Go(func() error {
		msgs, err := s.history.GetMessages(gctx, sessionID, s.historyAmount)
		if err != nil {
			if !s.historyFailOpen {
				return fmt.Errorf("get history for session %s: %w: %v", sessionID, domain.ErrServiceUnavailable, err)
			}
			s.logger.Warn("history unavailable, rendering without it",
				"session_id", sessionID,
				"error", err,
			)
			msgs = nil
		}
		view.InitialMessages = msgs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// ensureIndexed makes sure url has been handed to the indexer once.
// Only a membership store failure is returned as an error; ingestion problems
// are logged and reported through the outcome so the page still renders.
func (s *pageService) ensureIndexed(ctx context.Context, url string) (domain.IndexOutcome, error) {
	indexed, err := s.membership.IsMember(ctx, domain.IndexedURLsSet, url)
	if err != nil {
		return "", fmt.Errorf("check indexed url: %w: %v", domain.ErrServiceUnavailable, err)
	}
	if indexed {
		return domain.IndexOutcomeAlreadyIndexed, nil
	}

	if s.lock != nil {
		lockName := indexLockPrefix + url
		acquired, err := s.lock.Acquire(ctx, lockName, s.lockTTL)
		switch {
		case err != nil:
			// Fall back to unguarded ingestion; duplicates are possible but harmless.
			s.logger.Warn("index lock unavailable", "url", url, "error", err)
		case !acquired:
			s.logger.Debug("url is being indexed by another request", "url", url)
			return domain.IndexOutcomeInProgress, nil
		default:
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
					s.logger.Warn("failed to release index lock", "url", url, "error", err)
				}
			}()

			// Another request may have finished between the first check and the lock.
			indexed, err := s.membership.IsMember(ctx, domain.IndexedURLsSet, url)
			if err != nil {
				return "", fmt.Errorf("recheck indexed url: %w: %v", domain.ErrServiceUnavailable, err)
			}
			if indexed {
				return domain.IndexOutcomeAlreadyIndexed, nil
			}
		}
	}

	return s.ingest(ctx, url), nil
}

// ingest runs the indexer and records the URL only when ingestion succeeded.
func (s *pageService) ingest(ctx context.Context, url string) domain.IndexOutcome {
	start := time.Now()
	if err := s.indexer.Add(ctx, domain.HTMLSource(url)); err != nil {
		level := slog.LevelError
		if errors.Is(err, context.Canceled) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "ingestion failed, will retry on next visit",
			"url", url,
			"error", err,
		)
		return domain.IndexOutcomeFailed
	}

	if err := s.membership.Add(ctx, domain.IndexedURLsSet, url); err != nil {
		s.logger.Error("failed to record indexed url, will re-ingest on next visit",
			"url", url,
			"error", err,
		)
		return domain.IndexOutcomeFailed
	}

	s.logger.Info("indexed url",
		"url", url,
		"duration", time.Since(start),
	)
	return domain.IndexOutcomeIndexed
}
