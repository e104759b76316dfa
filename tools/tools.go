package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/discogstools/catalog"
	"github.com/jonwraymond/discogstools/discogs"
	"github.com/jonwraymond/discogstools/observe"
)

// User-facing messages sent on the Notifier side channel.
const (
	msgNoSearchParams   = "At least one search parameter must be provided."
	msgAPIRetry         = "Discogs API error. Please retry in a moment."
	msgSearchFailed     = "An error occurred while searching. Please try again."
	msgInvalidReleaseID = "Release ID must be a positive integer."
	msgDetailsFailed    = "An error occurred while retrieving release details. Please try again."
)

// Catalog is the non-blocking catalog the tools read from.
type Catalog interface {
	Search(ctx context.Context, params discogs.SearchParams) ([]discogs.ReleaseSummary, error)
	Release(ctx context.Context, id int) (*discogs.ReleaseDetail, error)
}

var _ Catalog = (*catalog.Service)(nil)

// SearchArgs are the arguments of search_releases. Empty values are absent.
type SearchArgs struct {
	Title   string `json:"title,omitempty" jsonschema:"description=Release title"`
	Artist  string `json:"artist,omitempty" jsonschema:"description=Artist name"`
	Barcode string `json:"barcode,omitempty" jsonschema:"description=Barcode number"`
	Label   string `json:"label,omitempty" jsonschema:"description=Record label name"`
	CatNo   string `json:"catno,omitempty" jsonschema:"description=Catalog number"`
	Year    int    `json:"year,omitempty" jsonschema:"description=Release year"`
	Format  string `json:"format,omitempty" jsonschema:"description=Format (e.g. Vinyl or CD or Cassette)"`
	Country string `json:"country,omitempty" jsonschema:"description=Country of release"`
}

// Params converts the arguments to catalog search parameters.
func (a SearchArgs) Params() discogs.SearchParams {
	return discogs.SearchParams(a)
}

// DetailsArgs are the arguments of get_release_details.
type DetailsArgs struct {
	ReleaseID int `json:"release_id" jsonschema:"description=Discogs release ID (positive integer)"`
}

// Toolset implements the host-facing operations.
type Toolset struct {
	catalog Catalog
	logger  observe.Logger
}

// ToolsetOption configures a Toolset.
type ToolsetOption func(*Toolset)

// WithLogger sets the logger used for failure details.
func WithLogger(l observe.Logger) ToolsetOption {
	return func(t *Toolset) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewToolset creates a Toolset reading from c.
func NewToolset(c Catalog, opts ...ToolsetOption) *Toolset {
	t := &Toolset{catalog: c, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SearchReleases returns the flattened first page of releases matching args.
// It never fails: on any problem it returns an empty slice and reports the
// problem through n.
func (t *Toolset) SearchReleases(ctx context.Context, n Notifier, args SearchArgs) (records []ReleaseRecord) {
	if n == nil {
		n = NopNotifier()
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error(ctx, "search_releases panicked", observe.Field{Key: "panic", Value: fmt.Sprint(r)})
			n.Error(ctx, msgSearchFailed)
			records = []ReleaseRecord{}
		}
	}()

	params := args.Params()
	fields := params.Fields()
	if len(fields) == 0 {
		n.Error(ctx, msgNoSearchParams)
		return []ReleaseRecord{}
	}

	n.Info(ctx, fmt.Sprintf("Searching Discogs with %d criteria", len(fields)))

	releases, err := t.catalog.Search(ctx, params)
	if err != nil {
		if errors.Is(err, catalog.ErrAPI) {
			t.logger.Warn(ctx, "search_releases upstream error", observe.Err(err))
			n.Error(ctx, msgAPIRetry)
		} else {
			t.logger.Error(ctx, "search_releases failed", observe.Err(err))
			n.Error(ctx, msgSearchFailed)
		}
		return []ReleaseRecord{}
	}

	records = make([]ReleaseRecord, 0, len(releases))
	for _, r := range releases {
		records = append(records, formatSummary(r))
	}

	n.Info(ctx, fmt.Sprintf("Found %d matching releases", len(records)))
	return records
}

// GetReleaseDetails returns the full record of one release, or nil after
// reporting the problem through n.
func (t *Toolset) GetReleaseDetails(ctx context.Context, n Notifier, id int) (record *ReleaseDetailRecord) {
	if n == nil {
		n = NopNotifier()
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error(ctx, "get_release_details panicked",
				observe.Field{Key: "release_id", Value: id},
				observe.Field{Key: "panic", Value: fmt.Sprint(r)},
			)
			n.Error(ctx, msgDetailsFailed)
			record = nil
		}
	}()

	if id <= 0 {
		t.logger.Warn(ctx, "invalid release id", observe.Field{Key: "release_id", Value: id})
		n.Error(ctx, msgInvalidReleaseID)
		return nil
	}

	n.Info(ctx, fmt.Sprintf("Retrieving details for release %d", id))

	detail, err := t.catalog.Release(ctx, id)
	if err != nil {
		var notFound *catalog.NotFoundError
		switch {
		case errors.As(err, &notFound):
			n.Error(ctx, notFound.Error())
		case errors.Is(err, catalog.ErrAPI):
			t.logger.Warn(ctx, "get_release_details upstream error", observe.Err(err))
			n.Error(ctx, msgAPIRetry)
		default:
			t.logger.Error(ctx, "get_release_details failed",
				observe.Field{Key: "release_id", Value: id},
				observe.Err(err),
			)
			n.Error(ctx, msgDetailsFailed)
		}
		return nil
	}
	if detail == nil {
		n.Error(ctx, msgDetailsFailed)
		return nil
	}

	record = formatDetail(detail)
	n.Info(ctx, fmt.Sprintf("Successfully retrieved details for '%s'", detail.Title))
	return record
}
