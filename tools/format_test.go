package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/discogstools/discogs"
)

func TestFormatSummary_NullsEmptyFields(t *testing.T) {
	data, err := json.Marshal(formatSummary(discogs.ReleaseSummary{ID: 1, Title: "X"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1, "title": "X", "artist": null, "year": null, "format": null,
		"label": null, "country": null, "barcode": null, "catno": null
	}`, string(data))
}

func TestFormatDetail_ListsNeverNull(t *testing.T) {
	data, err := json.Marshal(formatDetail(&discogs.ReleaseDetail{
		ReleaseSummary: discogs.ReleaseSummary{ID: 1, Title: "X", Year: 2001, Artists: []string{"A", "B"}},
	}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "A, B", got["artist"])
	assert.InDelta(t, 2001, got["year"], 0)
	assert.Equal(t, []any{}, got["genres"])
	assert.Equal(t, []any{}, got["styles"])
	assert.Equal(t, []any{}, got["tracklist"])
	assert.Nil(t, got["cover_image"])
	assert.Contains(t, got, "uri")
}
