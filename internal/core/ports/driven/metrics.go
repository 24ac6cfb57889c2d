package driven

import (
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

// PageMetrics records page orchestration measurements
type PageMetrics interface {
	// ObserveIndexOutcome counts one lazy-indexing result
	ObserveIndexOutcome(outcome domain.IndexOutcome)

	// ObservePageLoad records how long a page load took and whether it failed
	ObservePageLoad(d time.Duration, err error)
}
