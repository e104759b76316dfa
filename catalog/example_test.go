package catalog_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/jonwraymond/discogstools/catalog"
	"github.com/jonwraymond/discogstools/discogs"
)

func ExampleService_Release() {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/releases/123456" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Release not found."}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": 123456, "title": "Nevermind", "artists": [{"name": "Nirvana"}]}`))
	}))
	defer srv.Close()

	svc := catalog.NewService(discogs.NewHTTPClient(discogs.WithBaseURL(srv.URL)))
	ctx := context.Background()

	for range 2 {
		r, _ := svc.Release(ctx, 123456)
		fmt.Println(r.Title, r.Artists)
	}
	_, err := svc.Release(ctx, 999999)
	fmt.Println(err)
	fmt.Println("upstream calls:", calls.Load())
	// Output:
	// Nevermind [Nirvana]
	// Nevermind [Nirvana]
	// Release 999999 not found
	// upstream calls: 2
}
