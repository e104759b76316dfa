package discogs

import "context"

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_client.go

// Client is the synchronous upstream catalog.
type Client interface {
	// Search returns the first page of releases matching params.
	Search(ctx context.Context, params SearchParams) ([]ReleaseSummary, error)

	// Release returns the full record of one release.
	Release(ctx context.Context, id int) (*ReleaseDetail, error)
}
