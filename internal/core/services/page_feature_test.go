package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driving"
)

// pageWorld holds per-scenario state for the lazy indexing feature.
type pageWorld struct {
	fixture *pageFixture
	policy  domain.SessionPolicy
	token   string
	last    *domain.PageView
}

func (w *pageWorld) theSessionPolicyIs(policy string) error {
	p, err := domain.ParseSessionPolicy(policy)
	if err != nil {
		return err
	}
	w.policy = p
	return nil
}

func (w *pageWorld) noSessionCookieIsPresent() error {
	w.token = ""
	return nil
}

func (w *pageWorld) theSessionCookieIs(token string) error {
	w.token = token
	return nil
}

func (w *pageWorld) theIndexerFails() error {
	w.fixture.indexer.AddFn = func(ctx context.Context, source domain.ContentSource) error {
		return errors.New("upstream returned 502")
	}
	return nil
}

func (w *pageWorld) theIndexerRecovers() error {
	w.fixture.indexer.AddFn = nil
	return nil
}

func (w *pageWorld) theSessionHasPriorMessages(sessionID string, n int) error {
	for i := 0; i < n; i++ {
		msg := domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			Role:      domain.RoleUser,
			Content:   "hello",
			CreatedAt: time.Now(),
		}
		if err := w.fixture.history.AddMessage(context.Background(), sessionID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (w *pageWorld) iVisitTheSegments(path string) error {
	svc := w.fixture.service(func(cfg *PageServiceConfig) { cfg.SessionPolicy = w.policy })
	view, err := svc.Load(context.Background(), driving.PageRequest{
		Segments:     strings.Split(path, "/"),
		SessionToken: w.token,
	})
	if err != nil {
		return err
	}
	w.last = view
	return nil
}

func (w *pageWorld) theReconstructedURLIs(url string) error {
	if w.last.URL != url {
		return fmt.Errorf("expected url %q, got %q", url, w.last.URL)
	}
	return nil
}

func (w *pageWorld) theSessionIDIs(id string) error {
	if w.last.SessionID != id {
		return fmt.Errorf("expected session id %q, got %q", id, w.last.SessionID)
	}
	return nil
}

func (w *pageWorld) theIndexerWasAskedToIngest(kind, source string, times int) error {
	count := 0
	for _, call := range w.fixture.indexer.Calls() {
		if string(call.Type) == kind && call.Source == source {
			count++
		}
	}
	if count != times {
		return fmt.Errorf("expected %d ingestions of %s %q, got %d", times, kind, source, count)
	}
	return nil
}

func (w *pageWorld) isRecordedAsIndexed(url string) error {
	if !w.fixture.membership.Has(domain.IndexedURLsSet, url) {
		return fmt.Errorf("%q missing from %s", url, domain.IndexedURLsSet)
	}
	return nil
}

func (w *pageWorld) isNotRecordedAsIndexed(url string) error {
	if w.fixture.membership.Has(domain.IndexedURLsSet, url) {
		return fmt.Errorf("%q unexpectedly present in %s", url, domain.IndexedURLsSet)
	}
	return nil
}

func (w *pageWorld) thePageRendersWithHistoryMessages(n int) error {
	if len(w.last.InitialMessages) != n {
		return fmt.Errorf("expected %d history messages, got %d", n, len(w.last.InitialMessages))
	}
	return nil
}

func (w *pageWorld) theLastIndexOutcomeIs(outcome string) error {
	if string(w.last.IndexOutcome) != outcome {
		return fmt.Errorf("expected outcome %s, got %s", outcome, w.last.IndexOutcome)
	}
	return nil
}

func (w *pageWorld) historyWasRequestedWithAmount(amount int) error {
	for _, call := range w.fixture.history.Calls() {
		if call.Amount != amount {
			return fmt.Errorf("history requested with amount %d", call.Amount)
		}
	}
	return nil
}

func initializePageScenario(sc *godog.ScenarioContext) {
	w := &pageWorld{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		*w = pageWorld{
			fixture: &pageFixture{
				membership: mocks.NewMockMembershipStore(),
				indexer:    mocks.NewMockContextIndexer(),
				history:    mocks.NewMockHistoryStore(),
				lock:       mocks.NewMockDistributedLock(),
				metrics:    mocks.NewMockPageMetrics(),
			},
			policy: domain.SessionPolicyPage,
		}
		return ctx, nil
	})

	sc.Step(`^the session policy is "([^"]*)"$`, w.theSessionPolicyIs)
	sc.Step(`^no session cookie is present$`, w.noSessionCookieIsPresent)
	sc.Step(`^the session cookie is "([^"]*)"$`, w.theSessionCookieIs)
	sc.Step(`^the indexer fails$`, w.theIndexerFails)
	sc.Step(`^the indexer recovers$`, w.theIndexerRecovers)
	sc.Step(`^the session "([^"]*)" has (\d+) prior messages$`, w.theSessionHasPriorMessages)
	sc.Step(`^I visit the segments "([^"]*)"$`, w.iVisitTheSegments)
	sc.Step(`^the reconstructed URL is "([^"]*)"$`, w.theReconstructedURLIs)
	sc.Step(`^the session id is "([^"]*)"$`, w.theSessionIDIs)
	sc.Step(`^the indexer was asked to ingest "([^"]*)" from "([^"]*)" (\d+) times?$`, w.theIndexerWasAskedToIngest)
	sc.Step(`^"([^"]*)" is recorded as indexed$`, w.isRecordedAsIndexed)
	sc.Step(`^"([^"]*)" is not recorded as indexed$`, w.isNotRecordedAsIndexed)
	sc.Step(`^the page renders with (\d+) history messages$`, w.thePageRendersWithHistoryMessages)
	sc.Step(`^the last index outcome is "([^"]*)"$`, w.theLastIndexOutcomeIs)
	sc.Step(`^history was requested with amount (\d+)$`, w.historyWasRequestedWithAmount)
}

func TestLazyIndexingFeature(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "lazy-indexing",
		ScenarioInitializer: initializePageScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("lazy indexing feature failed")
	}
}
