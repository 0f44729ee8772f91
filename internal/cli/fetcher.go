package cli

import (
	"context"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/scraper"
)

// lazyFetcher builds the browser scraper on first use so commands that never
// sync do not need club credentials.
type lazyFetcher struct {
	a *app
}

func (f lazyFetcher) FetchAgendas(ctx context.Context, target time.Time, members []string) (*scraper.FetchResult, error) {
	fetcher, err := f.a.newFetcher(f.a.cfg)
	if err != nil {
		return nil, err
	}
	return fetcher.FetchAgendas(ctx, target, members)
}
