package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/bighogz/stockdiag/internal/models"
	"github.com/bighogz/stockdiag/internal/telemetry"
)

const overviewListLimit = 5

// Overview fetches the index snapshot and three stock rankings concurrently.
// A failed section is logged and left empty; the call fails only when every
// upstream request fails.
func (s *Service) Overview(ctx context.Context) (*models.Overview, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "dashboard.Overview")
	defer span.End()

	var (
		wg                         sync.WaitGroup
		index                      *models.Quote
		gainers, losers, mostTrade []models.Stock
		errs                       [4]error
	)
	list := func(i int, sortBy, order string, dst *[]models.Stock) {
		defer wg.Done()
		*dst, errs[i] = s.gw.ListStocks(ctx, models.ListOptions{
			Limit:     overviewListLimit,
			Type:      "stock",
			SortBy:    sortBy,
			SortOrder: order,
		})
	}
	wg.Add(4)
	go func() {
		defer wg.Done()
		index, errs[0] = s.gw.History(ctx, s.indexSymbol, models.Window{})
	}()
	go list(1, "change", "desc", &gainers)
	go list(2, "change", "asc", &losers)
	go list(3, "volume", "desc", &mostTrade)
	wg.Wait()

	sections := [4]string{"index", "top_gainers", "top_losers", "most_traded"}
	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed++
		ev := s.log.Warn()
		if errors.Is(err, models.ErrUnsupported) {
			ev = s.log.Debug()
		}
		ev.Err(err).Str("section", sections[i]).Msg("overview section unavailable")
	}
	if failed == len(errs) {
		span.RecordError(errs[0])
		return nil, errs[0]
	}

	out := &models.Overview{
		Indices:    []models.Index{},
		TopGainers: filterStocks(gainers, func(st models.Stock) bool { return st.Change != nil && *st.Change > 0 }),
		TopLosers:  filterStocks(losers, func(st models.Stock) bool { return st.Change != nil && *st.Change < 0 }),
		MostTraded: filterStocks(mostTrade, func(st models.Stock) bool { return st.Volume > 0 }),
		UpdatedAt:  s.now().UTC(),
	}
	if index != nil {
		name := index.ShortName
		if name == "" {
			name = index.Symbol
		}
		out.Indices = append(out.Indices, models.Index{
			Symbol:        index.Symbol,
			Name:          name,
			Price:         index.Price,
			Change:        index.Change,
			ChangePercent: index.ChangePercent,
		})
	}
	for _, st := range out.MostTraded {
		out.TotalVolume += st.Volume
	}
	return out, nil
}

func filterStocks(in []models.Stock, keep func(models.Stock) bool) []models.Stock {
	out := make([]models.Stock, 0, len(in))
	for _, st := range in {
		if keep(st) {
			out = append(out, st)
		}
	}
	return out
}
