package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// ResultToNotionProperties converts a constituency result to Notion page
// properties. The constituency code is the title property and the dedup key
// for idempotent syncs.
func ResultToNotionProperties(r model.ConstituencyResult, runID string) notionapi.Properties {
	props := notionapi.Properties{
		"Constituency ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: r.ConstituencyID,
					},
				},
			},
		},
	}

	if r.Name != "" {
		props["Constituency"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: r.Name,
					},
				},
			},
		}
	}

	if runID != "" {
		props["Run ID"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: runID,
					},
				},
			},
		}
	}

	props["Sales"] = notionapi.NumberProperty{
		Number: float64(r.Count),
	}
	props["Implied Revenue"] = notionapi.NumberProperty{
		Number: r.ImpliedRevenue.InexactFloat64(),
	}
	props["Allocated Revenue"] = notionapi.NumberProperty{
		Number: r.AllocatedRevenue.InexactFloat64(),
	}
	props["Share"] = notionapi.NumberProperty{
		Number: r.ShareOfTotal.InexactFloat64(),
	}
	if r.Count > 0 {
		props["Median Price"] = notionapi.NumberProperty{
			Number: r.MedianPrice.InexactFloat64(),
		}
	}

	return props
}
