package engine

import (
	"context"
	"log/slog"

	"github.com/Razaranyi/GreenInvoice/internal/model"
	"github.com/Razaranyi/GreenInvoice/internal/service"
)

// resolutionCache memoizes client lookups for one processing pass. Entries
// are never invalidated mid-run; the cache is owned by a single processor
// and is not safe for concurrent use.
type resolutionCache struct {
	billing service.BillingClient
	entries map[string]model.ClientResolution
}

func newResolutionCache(billing service.BillingClient) *resolutionCache {
	return &resolutionCache{
		billing: billing,
		entries: make(map[string]model.ClientResolution),
	}
}

// Resolve returns the cached outcome for a name, querying the provider on
// first sight. Ambiguous matches are cached too: a name that matched two
// records once will match them again this run.
func (c *resolutionCache) Resolve(ctx context.Context, name string) (model.ClientResolution, error) {
	if res, ok := c.entries[name]; ok {
		return res, nil
	}

	search, err := c.billing.SearchClientByName(ctx, name)
	if err != nil {
		return model.ClientResolution{}, err
	}

	var res model.ClientResolution
	switch {
	case search.Total == 0:
		res = model.ClientResolution{Status: model.ResolutionNotFound}
	case search.Total == 1:
		if len(search.Items) == 0 {
			// Provider claimed one match but sent no item; there is no ID
			// to bill against.
			slog.Warn("Client search total and items disagree", "name", name)
			res = model.ClientResolution{Status: model.ResolutionNotFound}
			break
		}
		res = model.ClientResolution{
			Status: model.ResolutionResolved,
			ID:     search.Items[0].ID,
			Email:  search.Items[0].Email,
		}
		slog.Debug("Resolved client", "name", name, "id", res.ID)
	default:
		res = model.ClientResolution{
			Status:  model.ResolutionAmbiguous,
			Matches: search.Total,
		}
		slog.Warn("Multiple provider clients share this name; refusing to bill",
			"name", name, "matches", search.Total)
	}

	c.entries[name] = res
	return res, nil
}
