package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/CommunityRAG/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// GetClient returns the pooled client shared by the genai and openai SDKs so embedding,
// OCR and generation calls reuse connections.
func GetClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Transport: customTransport,
			Timeout:   config.UpstreamHttpTimeout,
		}
	})
	return client
}
