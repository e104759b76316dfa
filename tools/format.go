package tools

import (
	"strings"

	"github.com/jonwraymond/discogstools/discogs"
)

// ReleaseRecord is the flat record returned for a search hit. List-valued
// fields are joined with ", " and are null when empty.
type ReleaseRecord struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Artist  *string `json:"artist"`
	Year    *int    `json:"year"`
	Format  *string `json:"format"`
	Label   *string `json:"label"`
	Country *string `json:"country"`
	Barcode *string `json:"barcode"`
	CatNo   *string `json:"catno"`
}

// TrackRecord is one tracklist entry.
type TrackRecord struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// ReleaseDetailRecord is the full record of a release. Genres, styles and
// tracklist are never null.
type ReleaseDetailRecord struct {
	ReleaseRecord
	Genres     []string      `json:"genres"`
	Styles     []string      `json:"styles"`
	Tracklist  []TrackRecord `json:"tracklist"`
	Thumb      *string       `json:"thumb"`
	CoverImage *string       `json:"cover_image"`
	URI        *string       `json:"uri"`
}

func formatSummary(s discogs.ReleaseSummary) ReleaseRecord {
	r := ReleaseRecord{
		ID:      s.ID,
		Title:   s.Title,
		Artist:  joined(s.Artists),
		Format:  joined(s.Formats),
		Label:   joined(s.Labels),
		Country: optional(s.Country),
		Barcode: joined(s.Barcodes),
		CatNo:   joined(s.CatNos),
	}
	if s.Year != 0 {
		year := s.Year
		r.Year = &year
	}
	return r
}

func formatDetail(d *discogs.ReleaseDetail) *ReleaseDetailRecord {
	tracks := make([]TrackRecord, 0, len(d.Tracklist))
	for _, t := range d.Tracklist {
		tracks = append(tracks, TrackRecord(t))
	}
	return &ReleaseDetailRecord{
		ReleaseRecord: formatSummary(d.ReleaseSummary),
		Genres:        orEmpty(d.Genres),
		Styles:        orEmpty(d.Styles),
		Tracklist:     tracks,
		Thumb:         optional(d.Thumb),
		CoverImage:    optional(d.CoverImage),
		URI:           optional(d.URI),
	}
}

func joined(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	s := strings.Join(values, ", ")
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
