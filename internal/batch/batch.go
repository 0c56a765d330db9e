// Package batch validates many addresses concurrently, one lookup per goroutine.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/akl7777777/avi-intl/internal/model"
)

// Looker is satisfied by *lookup.Service.
type Looker interface {
	Lookup(ctx context.Context, transport string, req model.AddressRequest) (*model.Result, error)
}

// Input is the YAML batch file layout.
type Input struct {
	Transport string                 `yaml:"transport"`
	Addresses []model.AddressRequest `yaml:"addresses"`
}

// Item is the outcome for one address, in input order.
type Item struct {
	Index     int                        `json:"index"`
	Transport string                     `json:"transport,omitempty"`
	Cached    bool                       `json:"cached,omitempty"`
	Response  *model.AddressInfoResponse `json:"response,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// ReadInput decodes a batch file.
func ReadInput(r io.Reader) (*Input, error) {
	var in Input
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if err == io.EOF {
			return &in, nil
		}
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	for i, a := range in.Addresses {
		lang, err := model.ParseOutputLanguage(string(a.OutputLanguage))
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", i, err)
		}
		in.Addresses[i].OutputLanguage = lang
	}
	return &in, nil
}

// Run looks up every request with at most concurrency calls in flight. A
// failed lookup is recorded on its item; only ctx cancellation stops the run.
func Run(ctx context.Context, l Looker, transport string, reqs []model.AddressRequest, concurrency int) ([]Item, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	items := make([]Item, len(reqs))
	for i := range items {
		items[i].Index = i
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := l.Lookup(gctx, transport, req)
			if err != nil {
				items[i].Error = err.Error()
				return ctx.Err()
			}
			items[i].Transport = res.Transport
			items[i].Cached = res.Cached
			items[i].Response = res.Response
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	failed := 0
	for _, it := range items {
		if it.Error != "" {
			failed++
		}
	}
	log.Printf("[batch] %d addresses, %d failed, concurrency=%d, took %s",
		len(reqs), failed, concurrency, time.Since(start).Round(time.Millisecond))
	return items, err
}

// WriteResults writes one JSON object per line.
func WriteResults(w io.Writer, items []Item) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
