package tiktok

import (
	"context"
	"errors"
	"strconv"

	"tokscraper/pkg/logger"
)

// errListingBlocked tells the caller a listing hit its blocked-attempt
// cap and its fallback strategy should run.
var errListingBlocked = errors.New("listing blocked by endpoint")

// maxListingPages bounds one listing loop even when the continuation
// flag never clears. Normal runs finish in a handful of pages.
const maxListingPages = 100

// noProgressLimit stops a listing whose pages keep succeeding without
// contributing items. Search result pages do this near the tail.
const noProgressLimit = 2

// listing describes one paginated collection run.
type listing struct {
	ep     Endpoint
	params map[string]string
	want   int

	// target names the entity for logs
	target string
	// rewarmURL is revisited between failed pages, "" to skip
	rewarmURL string
}

// paginate walks a cursor-paginated listing until the wanted count is
// reached or the endpoint stops producing. Page failures are absorbed
// by the endpoint's policy; the only errors that surface are caller
// cancellation and the blocked signal for fallback endpoints.
func (e *engine) paginate(ctx context.Context, l listing) ([]Item, error) {
	want := l.want
	if want <= 0 {
		want = e.cfg.Acquisition.DefaultCount
	}

	var (
		items      []Item
		cursor     = "0"
		pages      int
		failures   int
		blocked    int
		noProgress int
	)

	for len(items) < want && pages < maxListingPages {
		size := l.ep.PageSize
		if remaining := want - len(items); size > remaining {
			size = remaining
		}
		overrides := make(map[string]string, len(l.params)+2)
		for k, v := range l.params {
			overrides[k] = v
		}
		overrides["count"] = strconv.Itoa(size)
		overrides["cursor"] = cursor

		payload, err := e.Fetch(ctx, l.ep, overrides)
		if err != nil {
			if ctx.Err() != nil {
				return items, err
			}
			switch l.ep.Policy {
			case PolicyRewarm:
				failures++
				if failures >= e.cfg.Acquisition.ListingFailureCap {
					e.log.WarnWithFields("listing giving up after repeated page failures", map[string]interface{}{
						"endpoint":  l.ep.Key,
						"target":    l.target,
						"failures":  failures,
						"collected": len(items),
					})
					return items, nil
				}
				logger.LogSessionInvalidation(l.ep.Key, failures)
				e.invalidateSession()
				logger.LogContextRestart("listing page failure")
				if rerr := e.runner.Restart(ctx); rerr != nil {
					e.log.ErrorWithFields("browser restart failed, returning partial listing", map[string]interface{}{
						"error": rerr.Error(),
					})
					return items, nil
				}
				e.rewarm(ctx, l.rewarmURL)
				continue

			case PolicyFallback:
				blocked++
				if blocked >= e.cfg.Acquisition.BlockedRetryCap {
					return items, errListingBlocked
				}
				logger.LogSessionInvalidation(l.ep.Key, blocked)
				e.invalidateSession()
				e.rewarm(ctx, l.rewarmURL)
				continue

			default:
				return items, nil
			}
		}

		pages++
		pagesTotal.WithLabelValues(l.ep.Key).Inc()
		failures = 0

		added := 0
		for _, it := range extractItems(l.ep, payload) {
			if len(items) >= want {
				break
			}
			items = append(items, it)
			added++
		}
		logger.LogPageProgress(l.ep.Key, l.target, pages, len(items), want)

		if added == 0 {
			noProgress++
			if noProgress >= noProgressLimit {
				break
			}
		} else {
			noProgress = 0
		}

		if len(items) >= want {
			break
		}
		if !hasMoreOf(payload) {
			break
		}
		next := nextCursorOf(payload)
		if next == "" || next == "0" {
			break
		}
		cursor = next
	}

	return items, nil
}

// rewarm revisits the listing's origin page so the next attempt starts
// from a freshly loaded context. Failures here are not fatal.
func (e *engine) rewarm(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := e.runner.Navigate(ctx, url); err != nil {
		e.log.DebugWithFields("re-warm navigation had issues", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}

// extractItems pulls the page's records out of the endpoint's list
// fields, unwrapping nested carriers where the endpoint uses them.
// Source order is preserved.
func extractItems(ep Endpoint, payload map[string]interface{}) []Item {
	var items []Item
	for _, listKey := range ep.ListKeys {
		raw, ok := payload[listKey]
		if !ok {
			continue
		}
		entries, ok := raw.([]interface{})
		if !ok {
			continue
		}
		for _, entry := range entries {
			m := asMap(entry)
			if m == nil {
				continue
			}
			items = append(items, Item(unwrapEntry(ep, m)))
		}
	}
	return items
}

// unwrapEntry returns the first nested object matching the endpoint's
// unwrap keys, or the entry itself when none match. Search responses
// wrap items this way; plain listings pass through.
func unwrapEntry(ep Endpoint, entry map[string]interface{}) map[string]interface{} {
	for _, k := range ep.UnwrapKeys {
		if inner := asMap(entry[k]); inner != nil {
			return inner
		}
	}
	return entry
}

// hasMoreOf reads the continuation flag under either of its spellings.
func hasMoreOf(payload map[string]interface{}) bool {
	if v, ok := payload["hasMore"]; ok {
		return asBool(v)
	}
	if v, ok := payload["has_more"]; ok {
		return asBool(v)
	}
	return false
}

// nextCursorOf reads the next page cursor, "" when absent.
func nextCursorOf(payload map[string]interface{}) string {
	return asString(payload["cursor"])
}
