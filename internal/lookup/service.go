package lookup

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/akl7777777/avi-intl/internal/avi"
	"github.com/akl7777777/avi-intl/internal/cache"
	"github.com/akl7777777/avi-intl/internal/config"
	"github.com/akl7777777/avi-intl/internal/model"
)

// transport is a client plus its call counters.
type transport struct {
	client   *avi.Client
	calls    atomic.Int64
	failures atomic.Int64
}

// Service is the address lookup service used by the HTTP front-end and the CLI.
type Service struct {
	cache      *cache.Cache  // nil when CacheTTL is zero
	limiter    *rate.Limiter // nil when unlimited
	transports map[string]*transport
	order      []string
	def        string
	licenseKey string
	live       bool
	rateLimit  int
}

// NewService builds REST and SOAP clients from cfg. obs may be nil.
func NewService(cfg *config.Config, obs avi.Observer) *Service {
	observers := avi.Observers{avi.ObserverFunc(logAttempt)}
	if obs != nil {
		observers = append(observers, obs)
	}
	eps := cfg.Endpoints()

	svc := &Service{
		transports: map[string]*transport{
			"rest": {client: avi.NewRESTClient(eps, cfg.RESTTimeout, avi.WithObserver(observers))},
			"soap": {client: avi.NewSOAPClient(eps, cfg.SOAPTimeout, avi.WithObserver(observers))},
		},
		order:      []string{"rest", "soap"},
		def:        cfg.Transport,
		licenseKey: cfg.LicenseKey,
		live:       cfg.Live,
		rateLimit:  cfg.RateLimitPerMin,
	}

	if cfg.CacheTTL > 0 {
		svc.cache = cache.New(cfg.CacheTTL)
	}
	if cfg.RateLimitPerMin > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		svc.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMin)), burst)
	}

	mode := "live"
	if !cfg.Live {
		mode = "trial"
	}
	log.Printf("[lookup] Initialized (mode=%s, transport=%s, cache_ttl=%s, rate_limit=%d/min)",
		mode, cfg.Transport, cfg.CacheTTL, cfg.RateLimitPerMin)
	if cfg.LicenseKey == "" {
		log.Printf("[lookup] WARNING: no license key configured")
	}
	return svc
}

// Lookup validates req through the named transport, the default when empty.
// The service's license key fills an empty LicenseKey and its mode always
// decides IsLive.
// Order: cache → rate limiter → primary/backup endpoints.
func (s *Service) Lookup(ctx context.Context, transportName string, req model.AddressRequest) (*model.Result, error) {
	if transportName == "" {
		transportName = s.def
	}
	t, ok := s.transports[transportName]
	if !ok {
		return nil, fmt.Errorf("unknown transport %q", transportName)
	}

	if req.LicenseKey == "" {
		req.LicenseKey = s.licenseKey
	}
	req.IsLive = s.live

	// 1. Check cache
	key := cache.Key(transportName, req)
	if s.cache != nil {
		if resp, ok := s.cache.Get(key); ok {
			return &model.Result{Transport: transportName, Cached: true, Response: resp}, nil
		}
	}

	// 2. Wait for the outbound budget
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	// 3. Call the service
	t.calls.Add(1)
	resp, err := t.client.GetAddressInfo(ctx, req)
	if err != nil {
		t.failures.Add(1)
		log.Printf("[lookup] %s failed: %v", transportName, err)
		return nil, err
	}

	if resp.Error != nil {
		log.Printf("[lookup] %s → service error (type_code=%s desc=%s)", transportName, resp.Error.TypeCode, resp.Error.Desc)
	} else if s.cache != nil {
		s.cache.Set(key, resp)
	}
	return &model.Result{Transport: transportName, Response: resp}, nil
}

func logAttempt(a avi.Attempt) {
	if a.Err != nil {
		log.Printf("[avi] %s %s %s → %s in %s: %v", a.Transport, a.Role, a.Endpoint, a.Outcome, a.Duration.Round(time.Millisecond), a.Err)
		return
	}
	log.Printf("[avi] %s %s %s → %s in %s", a.Transport, a.Role, a.Endpoint, a.Outcome, a.Duration.Round(time.Millisecond))
}

// Stats returns service statistics.
func (s *Service) Stats() *model.StatsResponse {
	statuses := make([]model.TransportStatus, 0, len(s.order))
	for _, name := range s.order {
		t := s.transports[name]
		eps := t.client.Endpoints()
		statuses = append(statuses, model.TransportStatus{
			Name:     name,
			Primary:  eps.Primary,
			Backup:   eps.Backup,
			Trial:    eps.Trial,
			Calls:    t.calls.Load(),
			Failures: t.failures.Load(),
		})
	}

	resp := &model.StatsResponse{
		Live:             s.live,
		DefaultTransport: s.def,
		CacheEnabled:     s.cache != nil,
		RateLimitPerMin:  s.rateLimit,
		Transports:       statuses,
	}
	if s.cache != nil {
		resp.CacheSize = s.cache.Size()
		resp.CacheTTL = s.cache.TTL().String()
	}
	return resp
}

// Close cleans up resources.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Stop()
	}
}
