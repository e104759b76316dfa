package discogs

import (
	"strconv"
	"strings"
)

// SearchParams are the filters of a release search. Zero values are absent.
type SearchParams struct {
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Barcode string `json:"barcode,omitempty"`
	Label   string `json:"label,omitempty"`
	CatNo   string `json:"catno,omitempty"`
	Year    int    `json:"year,omitempty"`
	Format  string `json:"format,omitempty"`
	Country string `json:"country,omitempty"`
}

// Fields returns the non-absent filters keyed by parameter name. Strings are
// trimmed; a blank string counts as absent.
func (p SearchParams) Fields() map[string]any {
	fields := make(map[string]any, 8)
	add := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			fields[key] = v
		}
	}

	add("title", p.Title)
	add("artist", p.Artist)
	add("barcode", p.Barcode)
	add("label", p.Label)
	add("catno", p.CatNo)
	add("format", p.Format)
	add("country", p.Country)
	if p.Year != 0 {
		fields["year"] = p.Year
	}

	return fields
}

// Empty reports whether no filter is set.
func (p SearchParams) Empty() bool {
	return len(p.Fields()) == 0
}

// query renders the filters as upstream query parameters. Title is sent as
// release_title so it matches the release name rather than free text.
func (p SearchParams) query() map[string]string {
	q := make(map[string]string, 10)
	for k, v := range p.Fields() {
		key := k
		if k == "title" {
			key = "release_title"
		}
		switch val := v.(type) {
		case string:
			q[key] = val
		case int:
			q[key] = strconv.Itoa(val)
		}
	}
	q["type"] = "release"
	return q
}

// ReleaseSummary is the normalized shape of one catalog release.
type ReleaseSummary struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists,omitempty"`
	Year     int      `json:"year,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	CatNos   []string `json:"catnos,omitempty"`
	Country  string   `json:"country,omitempty"`
	Barcodes []string `json:"barcodes,omitempty"`
}

// Track is one playable entry of a tracklist.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// ReleaseDetail is the full record of a single release.
type ReleaseDetail struct {
	ReleaseSummary
	Genres     []string `json:"genres,omitempty"`
	Styles     []string `json:"styles,omitempty"`
	Tracklist  []Track  `json:"tracklist,omitempty"`
	Thumb      string   `json:"thumb,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
	URI        string   `json:"uri,omitempty"`
}
