package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

// paginate follows next_page_token cursors until a page comes back without one
// and returns every page's items in the order received. Any failed page aborts the
// whole call with a *FetchError; items gathered so far are dropped.
//
// extract pulls the items and the next cursor out of a decoded page of type P.
func paginate[P any, T any](ctx context.Context, c *Client, op, path, token string, params url.Values, extract func(*P) ([]T, string), attrs ...attribute.KeyValue) ([]T, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("page_size", strconv.Itoa(c.pageSize))
	query.Del("next_page_token")

	items := make([]T, 0)
	for page := 1; ; page++ {
		pageAttrs := append(append([]attribute.KeyValue(nil), attrs...), attribute.Int(instrumentation.SpanAttrPage, page))
		status, body, err := c.get(ctx, op, path, token, query, pageAttrs...)
		if err != nil {
			return nil, &FetchError{Op: op, StatusCode: status, Err: err}
		}
		if !isSuccess(status) {
			return nil, &FetchError{Op: op, StatusCode: status, Body: logging.Truncate(string(body), maxErrorBody)}
		}

		var p P
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &FetchError{Op: op, StatusCode: status, Err: fmt.Errorf("failed to decode page %d: %w", page, err)}
		}

		pageItems, next := extract(&p)
		items = append(items, pageItems...)
		c.logger.Debug("fetched page",
			logging.Operation(op),
			"page", page,
			"items", len(pageItems),
			"has_next", next != "")

		if next == "" {
			return items, nil
		}
		query.Set("next_page_token", next)
	}
}
