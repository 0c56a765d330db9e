package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akl7777777/avi-intl/internal/model"
)

type fakeLooker struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeLooker) Lookup(ctx context.Context, transport string, req model.AddressRequest) (*model.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	if req.Address1 == "bad" {
		return nil, errors.New("both primary and backup endpoints failed")
	}
	return &model.Result{
		Transport: transport,
		Response:  &model.AddressInfoResponse{AddressInfo: &model.AddressInfo{Address1: strings.ToUpper(req.Address1)}},
	}, nil
}

func TestRunKeepsOrderAndRecordsFailures(t *testing.T) {
	reqs := []model.AddressRequest{{Address1: "a"}, {Address1: "bad"}, {Address1: "c"}, {Address1: "d"}, {Address1: "e"}}
	fl := &fakeLooker{}

	items, err := Run(context.Background(), fl, "soap", reqs, 2)
	require.NoError(t, err)
	require.Len(t, items, 5)

	for i, it := range items {
		assert.Equal(t, i, it.Index)
	}
	assert.Equal(t, "A", items[0].Response.AddressInfo.Address1)
	assert.Equal(t, "soap", items[0].Transport)
	assert.Contains(t, items[1].Error, "both primary and backup")
	assert.Nil(t, items[1].Response)
	assert.Equal(t, "E", items[4].Response.AddressInfo.Address1)
	assert.LessOrEqual(t, fl.peak.Load(), int32(2))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := Run(ctx, &fakeLooker{}, "", []model.AddressRequest{{Address1: "a"}, {Address1: "b"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, items, 2)
}

func TestReadInput(t *testing.T) {
	in, err := ReadInput(strings.NewReader(`
transport: soap
addresses:
  - address1: 27 E Cota St
    address2: Ste 500
    locality: Santa Barbara
    administrative_area: CA
    postal_code: "93101"
    country: USA
  - address1: 10 Downing St
    locality: London
    country: GB
    output_language: local_roman
`))
	require.NoError(t, err)
	assert.Equal(t, "soap", in.Transport)
	require.Len(t, in.Addresses, 2)
	assert.Equal(t, "93101", in.Addresses[0].PostalCode)
	assert.Equal(t, model.LanguageEnglish, in.Addresses[0].OutputLanguage)
	assert.Equal(t, model.LanguageLocalRoman, in.Addresses[1].OutputLanguage)

	_, err = ReadInput(strings.NewReader("addresses:\n  - address1: x\n    output_language: klingon\n"))
	assert.Error(t, err)

	_, err = ReadInput(strings.NewReader("addresses:\n  - licenseKey: x\n"))
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []Item{
		{Index: 0, Transport: "rest", Response: &model.AddressInfoResponse{AddressInfo: &model.AddressInfo{Status: "Valid"}}},
		{Index: 1, Error: "boom"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Item
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Valid", first.Response.AddressInfo.Status)
	assert.Contains(t, lines[1], `"error":"boom"`)
}
