package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/akl7777777/avi-intl/internal/model"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	resp := &model.AddressInfoResponse{AddressInfo: &model.AddressInfo{Status: "Valid"}}
	c.Set("k", resp)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Same(t, resp, got)
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("other")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	c.Set("k", &model.AddressInfoResponse{})
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())
	c.Purge()
	assert.Equal(t, 0, c.Size())
}

func TestKey(t *testing.T) {
	req := model.AddressRequest{Address1: "1 Main St", Country: "US", LicenseKey: "a", IsLive: true}
	other := req
	other.LicenseKey = "b"
	other.TimeoutSeconds = 30
	assert.Equal(t, Key("rest", req), Key("rest", other))

	assert.NotEqual(t, Key("rest", req), Key("soap", req))

	trial := req
	trial.IsLive = false
	assert.NotEqual(t, Key("rest", req), Key("rest", trial))

	// Field boundaries matter.
	a := model.AddressRequest{Address1: "ab", Address2: "c"}
	b := model.AddressRequest{Address1: "a", Address2: "bc"}
	assert.NotEqual(t, Key("rest", a), Key("rest", b))
}

func TestStopTwice(t *testing.T) {
	c := New(time.Minute)
	c.Stop()
	c.Stop()
}
