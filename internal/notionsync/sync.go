// Package notionsync pushes constituency results into a Notion database for
// sharing with non-technical collaborators. Sync is idempotent on the
// constituency code: existing pages are updated in place, missing ones are
// created, and pages for constituencies no longer in the results are archived.
package notionsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/jomei/notionapi"

	"github.com/ewaddington/surcharge-atlas/internal/logger"
	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// SyncResults syncs the top N constituencies by allocated revenue to the
// Notion database. topN <= 0 syncs every constituency. With dryRun set, the
// plan is logged but nothing is written.
func SyncResults(ctx context.Context, results []model.ConstituencyResult, notionClient NotionService, notionDBID, runID string, topN int, dryRun bool) error {
	log := logger.FromContext(ctx)

	sorted := make([]model.ConstituencyResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].AllocatedRevenue.Equal(sorted[j].AllocatedRevenue) {
			return sorted[i].AllocatedRevenue.GreaterThan(sorted[j].AllocatedRevenue)
		}
		return sorted[i].ConstituencyID < sorted[j].ConstituencyID
	})
	if topN > 0 && topN < len(sorted) {
		sorted = sorted[:topN]
	}

	log.Info().
		Bool("dry_run", dryRun).
		Int("constituencies", len(sorted)).
		Str("run_id", runID).
		Msg("Starting results sync to Notion")

	wanted := make(map[string]bool, len(sorted))
	for _, r := range sorted {
		wanted[r.ConstituencyID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]string, len(notionPages))
	var deleted int
	for _, page := range notionPages {
		code := extractConstituencyID(page)
		if code != "" && wanted[code] {
			existing[code] = string(page.ID)
			continue
		}

		// Stale: no constituency code, or dropped from this run's table.
		if dryRun {
			log.Info().
				Str("constituency_id", code).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("constituency_id", code).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		deleted++
	}

	var created, updated int
	for _, r := range sorted {
		props := ResultToNotionProperties(r, runID)

		if pageID, ok := existing[r.ConstituencyID]; ok {
			if dryRun {
				log.Info().
					Str("constituency_id", r.ConstituencyID).
					Msg("[DRY RUN] Would update Notion page")
				updated++
				continue
			}
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().
					Err(err).
					Str("constituency_id", r.ConstituencyID).
					Str("page_id", pageID).
					Msg("Failed to update Notion page")
				continue
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().
				Str("constituency_id", r.ConstituencyID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}
		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("constituency_id", r.ConstituencyID).
				Msg("Failed to create Notion page")
			continue
		}
		log.Debug().
			Str("constituency_id", r.ConstituencyID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", deleted).
		Int("total", len(sorted)).
		Msg("Results sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database, following
// pagination.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractConstituencyID extracts the constituency code from a Notion page's
// title property. Returns empty string if not found.
func extractConstituencyID(page notionapi.Page) string {
	if prop, ok := page.Properties["Constituency ID"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
