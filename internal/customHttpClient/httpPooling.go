package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/apatwari/docchat/internal/config"
)

var (
	pooled *http.Client
	once   sync.Once
)

// Pooled returns a shared client with connection reuse tuned for the
// qdrant/llm/embedder backends, which are called on every query.
func Pooled() *http.Client {
	once.Do(func() {
		pooled = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooled
}
