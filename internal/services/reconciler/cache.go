package reconciler

import (
	"encoding/json"
	"fmt"

	"bulk-payment-backend/internal/models"
)

// cacheRows decodes the cache's merged row set (newest first).
func cacheRows(cache *models.JobCache) ([]models.Row, error) {
	if len(cache.Rows) == 0 {
		return nil, nil
	}
	var rows []models.Row
	if err := json.Unmarshal(cache.Rows, &rows); err != nil {
		return nil, fmt.Errorf("decode cached rows: %w", err)
	}
	return rows, nil
}

// mergePage folds one fetched result page into the cache and returns the
// merged row count. The server returns pages oldest-first while the cache is
// kept newest-first, so the page is reversed before merging. Rows already
// present (structural equality) are dropped, which makes re-fetching a page
// idempotent. An empty page bumps the consecutive-empty counter and does not
// advance the page cursor; a page with rows resets the counter.
func mergePage(cache *models.JobCache, page int, data []models.Row) (int, error) {
	rows, err := cacheRows(cache)
	if err != nil {
		return 0, err
	}

	if len(data) == 0 {
		cache.ConsecutiveEmpty++
		return len(rows), nil
	}

	seen := make(map[models.Row]struct{}, len(rows))
	for _, row := range rows {
		seen[row] = struct{}{}
	}
	for i := len(data) - 1; i >= 0; i-- {
		row := data[i]
		if _, dup := seen[row]; dup {
			continue
		}
		rows = append([]models.Row{row}, rows...)
		seen[row] = struct{}{}
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("encode cached rows: %w", err)
	}
	cache.Rows = raw
	if page > cache.LastFetchedPage {
		cache.LastFetchedPage = page
	}
	cache.ConsecutiveEmpty = 0
	return len(rows), nil
}

// seedTotal records a known total; once set it never decreases.
func seedTotal(cache *models.JobCache, total int) {
	if total > cache.TotalRows {
		cache.TotalRows = total
	}
}
