package discogs

import (
	"strconv"
	"strings"
)

type rawSearchResponse struct {
	Results []rawSearchResult `json:"results"`
}

// rawSearchResult is one search hit. Year arrives as a string and the title
// as "Artist - Title".
type rawSearchResult struct {
	ID      int      `json:"id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Year    string   `json:"year"`
	Country string   `json:"country"`
	Format  []string `json:"format"`
	Label   []string `json:"label"`
	CatNo   string   `json:"catno"`
	Barcode []string `json:"barcode"`
}

func (r rawSearchResult) normalize() ReleaseSummary {
	artist, title := splitTitle(r.Title)
	year, _ := strconv.Atoi(strings.TrimSpace(r.Year))

	s := ReleaseSummary{
		ID:       r.ID,
		Title:    title,
		Year:     year,
		Formats:  uniqueNonEmpty(r.Format),
		Labels:   uniqueNonEmpty(r.Label),
		CatNos:   uniqueNonEmpty([]string{r.CatNo}),
		Country:  strings.TrimSpace(r.Country),
		Barcodes: uniqueNonEmpty(r.Barcode),
	}
	if artist != "" {
		s.Artists = []string{artist}
	}
	return s
}

// splitTitle splits "Artist - Title" on the first separator. A title without
// one is returned whole.
func splitTitle(s string) (artist, title string) {
	s = strings.TrimSpace(s)
	if a, t, ok := strings.Cut(s, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", s
}

type rawRelease struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Year        int             `json:"year"`
	Country     string          `json:"country"`
	Artists     []rawName       `json:"artists"`
	Labels      []rawLabel      `json:"labels"`
	Formats     []rawName       `json:"formats"`
	Identifiers []rawIdentifier `json:"identifiers"`
	Barcode     []string        `json:"barcode"`
	Genres      []string        `json:"genres"`
	Styles      []string        `json:"styles"`
	Tracklist   []rawTrack      `json:"tracklist"`
	Thumb       string          `json:"thumb"`
	Images      []rawImage      `json:"images"`
	URI         string          `json:"uri"`
}

type rawName struct {
	Name string `json:"name"`
}

type rawLabel struct {
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

type rawIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type rawTrack struct {
	Position string `json:"position"`
	Type     string `json:"type_"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type rawImage struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

func (r rawRelease) normalize() ReleaseDetail {
	artists := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		artists = append(artists, a.Name)
	}
	formats := make([]string, 0, len(r.Formats))
	for _, f := range r.Formats {
		formats = append(formats, f.Name)
	}
	labels := make([]string, 0, len(r.Labels))
	catnos := make([]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		labels = append(labels, l.Name)
		catnos = append(catnos, l.CatNo)
	}

	barcodes := make([]string, 0, len(r.Identifiers))
	for _, id := range r.Identifiers {
		if strings.EqualFold(id.Type, "Barcode") {
			barcodes = append(barcodes, id.Value)
		}
	}
	if len(barcodes) == 0 {
		barcodes = r.Barcode
	}

	tracks := make([]Track, 0, len(r.Tracklist))
	for _, t := range r.Tracklist {
		if t.Type != "" && t.Type != "track" {
			continue
		}
		tracks = append(tracks, Track{
			Position: t.Position,
			Title:    t.Title,
			Duration: t.Duration,
		})
	}

	d := ReleaseDetail{
		ReleaseSummary: ReleaseSummary{
			ID:       r.ID,
			Title:    strings.TrimSpace(r.Title),
			Artists:  uniqueNonEmpty(artists),
			Year:     r.Year,
			Formats:  uniqueNonEmpty(formats),
			Labels:   uniqueNonEmpty(labels),
			CatNos:   uniqueNonEmpty(catnos),
			Country:  strings.TrimSpace(r.Country),
			Barcodes: uniqueNonEmpty(barcodes),
		},
		Genres:    nonNil(r.Genres),
		Styles:    nonNil(r.Styles),
		Tracklist: tracks,
		Thumb:     r.Thumb,
		URI:       r.URI,
	}
	if len(r.Images) > 0 {
		d.CoverImage = r.Images[0].URI
	}
	return d
}

// uniqueNonEmpty trims values and drops blanks and repeats, keeping order.
// It returns nil when nothing remains.
func uniqueNonEmpty(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
