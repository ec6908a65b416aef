package ingest

import (
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
)

func TestEntryText(t *testing.T) {
	tests := []struct {
		name  string
		entry gofeed.Item
		want  string
	}{
		{
			name:  "title and description",
			entry: gofeed.Item{Title: "Microsoft acquires Activision", Description: "An all-cash deal."},
			want:  "Microsoft acquires Activision. An all-cash deal.",
		},
		{
			name:  "content fallback",
			entry: gofeed.Item{Title: "Deal news", Content: "Full body text."},
			want:  "Deal news. Full body text.",
		},
		{
			name:  "title only",
			entry: gofeed.Item{Title: "Deal news"},
			want:  "Deal news",
		},
		{
			name:  "empty entry",
			entry: gofeed.Item{},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entryText(&tt.entry))
		})
	}
}
