package resolver

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient keeps resolver responses on disk under cacheDir, or in
// memory when cacheDir is empty. Lookups honour the server's Cache-Control.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		return &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		}
	}

	return &http.Client{
		Transport: httpcache.NewTransport(diskcache.New(cacheDir)),
	}
}
