package httpsource

import "time"

const (
	providerName       = "http"
	defaultURL         = "http://localhost:3000/data/players.json"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)
