package notionsync

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

type mockNotion struct {
	pages []notionapi.Page

	created  []string
	updated  []string
	archived []string
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, titleOf(properties))
	return &notionapi.Page{ID: notionapi.ObjectID("page-" + titleOf(properties))}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated = append(m.updated, pageID)
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.pages, HasMore: false}, nil
}

func (m *mockNotion) DeletePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func titleOf(props notionapi.Properties) string {
	if title, ok := props["Constituency ID"].(notionapi.TitleProperty); ok && len(title.Title) > 0 {
		return title.Title[0].Text.Content
	}
	return ""
}

func existingPage(pageID, constituencyID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Constituency ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: constituencyID}},
			},
		},
	}
}

func result(id string, allocated int64) model.ConstituencyResult {
	return model.ConstituencyResult{
		ConstituencyAggregate: model.ConstituencyAggregate{
			ConstituencyID: id,
			Name:           "Constituency " + id,
			Count:          2,
			ImpliedRevenue: decimal.NewFromInt(allocated / 1000),
			MedianPrice:    decimal.NewFromInt(2_500_000),
		},
		AllocatedRevenue: decimal.NewFromInt(allocated),
		ShareOfTotal:     decimal.NewFromFloat(0.5),
	}
}

func TestSyncResultsIdempotent(t *testing.T) {
	mock := &mockNotion{
		pages: []notionapi.Page{
			existingPage("page-a", "A"),
			existingPage("page-stale", "GONE"),
		},
	}
	results := []model.ConstituencyResult{
		result("A", 2_000_000),
		result("B", 1_000_000),
	}

	if err := SyncResults(context.Background(), results, mock, "db", "run-1", 0, false); err != nil {
		t.Fatalf("SyncResults failed: %v", err)
	}

	if len(mock.updated) != 1 || mock.updated[0] != "page-a" {
		t.Errorf("updated = %v, want [page-a]", mock.updated)
	}
	if len(mock.created) != 1 || mock.created[0] != "B" {
		t.Errorf("created = %v, want [B]", mock.created)
	}
	if len(mock.archived) != 1 || mock.archived[0] != "page-stale" {
		t.Errorf("archived = %v, want [page-stale]", mock.archived)
	}
}

func TestSyncResultsTopN(t *testing.T) {
	mock := &mockNotion{}
	results := []model.ConstituencyResult{
		result("LOW", 100),
		result("HIGH", 10_000),
		result("MID", 1_000),
	}

	if err := SyncResults(context.Background(), results, mock, "db", "run-1", 2, false); err != nil {
		t.Fatalf("SyncResults failed: %v", err)
	}

	if len(mock.created) != 2 {
		t.Fatalf("created %d pages, want 2", len(mock.created))
	}
	if mock.created[0] != "HIGH" || mock.created[1] != "MID" {
		t.Errorf("created = %v, want [HIGH MID]", mock.created)
	}
}

func TestSyncResultsDryRun(t *testing.T) {
	mock := &mockNotion{
		pages: []notionapi.Page{existingPage("page-stale", "GONE")},
	}
	results := []model.ConstituencyResult{result("A", 500)}

	if err := SyncResults(context.Background(), results, mock, "db", "run-1", 0, true); err != nil {
		t.Fatalf("SyncResults failed: %v", err)
	}

	if len(mock.created)+len(mock.updated)+len(mock.archived) != 0 {
		t.Errorf("dry run wrote to Notion: created=%v updated=%v archived=%v",
			mock.created, mock.updated, mock.archived)
	}
}

func TestResultToNotionProperties(t *testing.T) {
	props := ResultToNotionProperties(result("E14001172", 1_000_000), "run-9")

	if got := titleOf(props); got != "E14001172" {
		t.Errorf("title = %q, want E14001172", got)
	}
	alloc, ok := props["Allocated Revenue"].(notionapi.NumberProperty)
	if !ok || alloc.Number != 1_000_000 {
		t.Errorf("Allocated Revenue = %+v, want 1000000", props["Allocated Revenue"])
	}
	if _, ok := props["Run ID"]; !ok {
		t.Error("missing Run ID property")
	}
}
