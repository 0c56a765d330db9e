package model

// Result is what the lookup service hands to its callers.
type Result struct {
	Transport string               `json:"transport"`
	Cached    bool                 `json:"cached"`
	Response  *AddressInfoResponse `json:"response"`
}

// TransportStatus describes one configured transport.
type TransportStatus struct {
	Name     string `json:"name"`
	Primary  string `json:"primary"`
	Backup   string `json:"backup"`
	Trial    string `json:"trial"`
	Calls    int64  `json:"calls"`
	Failures int64  `json:"failures"`
}

// StatsResponse is returned by the /stats endpoint.
type StatsResponse struct {
	Live             bool              `json:"live"`
	DefaultTransport string            `json:"default_transport"`
	CacheEnabled     bool              `json:"cache_enabled"`
	CacheSize        int               `json:"cache_size"`
	CacheTTL         string            `json:"cache_ttl"`
	RateLimitPerMin  int               `json:"rate_limit_per_min"`
	Transports       []TransportStatus `json:"transports"`
}

// ErrorResponse is returned on error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
