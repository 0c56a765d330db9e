package avi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akl7777777/avi-intl/internal/model"
)

var testEndpoints = Endpoints{
	Primary: "https://primary.test",
	Backup:  "https://backup.test",
	Trial:   "https://trial.test",
}

type reply func(ctx context.Context) (*model.AddressInfoResponse, error)

type fakeTransport struct {
	mu      sync.Mutex
	calls   []string
	replies map[string]reply
}

func newFake(replies map[string]reply) *fakeTransport {
	return &fakeTransport{replies: replies}
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) GetAddressInfo(ctx context.Context, host string, _ model.AddressRequest) (*model.AddressInfoResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, host)
	r := f.replies[host]
	f.mu.Unlock()
	if r == nil {
		return nil, errors.New("unexpected host " + host)
	}
	return r(ctx)
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func ok(info *model.AddressInfo) reply {
	return func(context.Context) (*model.AddressInfoResponse, error) {
		return &model.AddressInfoResponse{AddressInfo: info}, nil
	}
}

func svcErr(code string) reply {
	return func(context.Context) (*model.AddressInfoResponse, error) {
		return &model.AddressInfoResponse{Error: &model.Error{Type: "Service", TypeCode: code, Desc: "desc " + code, DescCode: code}}, nil
	}
}

func netErr(msg string) reply {
	return func(context.Context) (*model.AddressInfoResponse, error) {
		return nil, errors.New(msg)
	}
}

func liveReq() model.AddressRequest {
	return model.AddressRequest{Address1: "27 E Cota St", Locality: "Santa Barbara", Country: "USA", LicenseKey: "key", IsLive: true}
}

func trialReq() model.AddressRequest {
	r := liveReq()
	r.IsLive = false
	return r
}

var primaryInfo = &model.AddressInfo{Status: "Valid", Address1: "primary", InformationComponents: []model.InformationComponent{}}
var backupInfo = &model.AddressInfo{Status: "Valid", Address1: "backup", InformationComponents: []model.InformationComponent{}}

func TestLivePrimarySuccess(t *testing.T) {
	ft := newFake(map[string]reply{testEndpoints.Primary: ok(primaryInfo)})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	assert.Equal(t, primaryInfo, resp.AddressInfo)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []string{testEndpoints.Primary}, ft.Calls())
}

func TestLivePrimaryTransportFailureBackupSuccess(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: netErr("connection refused"),
		testEndpoints.Backup:  ok(backupInfo),
	})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	assert.Equal(t, backupInfo, resp.AddressInfo)
	assert.Equal(t, []string{testEndpoints.Primary, testEndpoints.Backup}, ft.Calls())
}

func TestLivePrimaryRetryableBackupSuccess(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: svcErr("3"),
		testEndpoints.Backup:  ok(backupInfo),
	})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	assert.Equal(t, backupInfo, resp.AddressInfo)
	assert.Len(t, ft.Calls(), 2)
}

func TestLivePrimaryRetryableBackupAnyError(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: svcErr("3"),
		testEndpoints.Backup:  svcErr("4"),
	})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Len(t, ft.Calls(), 2)

	var fe *FailoverError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "TypeCode=3")
	assert.Contains(t, err.Error(), "TypeCode=4")

	var se *ServiceError
	require.True(t, errors.As(fe.Backup, &se))
	assert.Equal(t, RoleBackup, se.Role)
	assert.Equal(t, "4", se.Err.TypeCode)
}

func TestLivePrimaryNonRetryableErrorIsReturned(t *testing.T) {
	ft := newFake(map[string]reply{testEndpoints.Primary: svcErr("7")})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "7", resp.Error.TypeCode)
	assert.Nil(t, resp.AddressInfo)
	assert.Equal(t, []string{testEndpoints.Primary}, ft.Calls())
}

func TestLiveBothTransportFailures(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: netErr("primary down"),
		testEndpoints.Backup:  netErr("backup down"),
	})
	_, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
	assert.Contains(t, err.Error(), "backup down")

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, RolePrimary, te.Role)
}

func TestLiveBackupTransportFailureAfterRetryable(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: svcErr("3"),
		testEndpoints.Backup:  netErr("backup down"),
	})
	_, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	var fe *FailoverError
	require.True(t, errors.As(err, &fe))
	code, isSvc := IsServiceError(err)
	require.True(t, isSvc)
	assert.Equal(t, "3", code.TypeCode)
}

func TestTrialTransportFailureIsTerminal(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Trial:  netErr("trial down"),
		testEndpoints.Backup: ok(backupInfo),
	})
	_, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), trialReq())
	require.Error(t, err)
	assert.Equal(t, []string{testEndpoints.Trial}, ft.Calls())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, RoleTrial, te.Role)
	var fe *FailoverError
	assert.False(t, errors.As(err, &fe))
}

func TestTrialRetryableErrorIsRaised(t *testing.T) {
	ft := newFake(map[string]reply{testEndpoints.Trial: svcErr("3")})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), trialReq())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Len(t, ft.Calls(), 1)

	code, isSvc := IsServiceError(err)
	require.True(t, isSvc)
	assert.Equal(t, "3", code.TypeCode)
}

func TestTrialNonRetryableErrorIsReturned(t *testing.T) {
	ft := newFake(map[string]reply{testEndpoints.Trial: svcErr("2")})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), trialReq())
	require.NoError(t, err)
	assert.Equal(t, "2", resp.Error.TypeCode)
	assert.Len(t, ft.Calls(), 1)
}

func TestLenientBackupReturnsBackupError(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: svcErr("3"),
		testEndpoints.Backup:  svcErr("4"),
	})
	c := New(ft, testEndpoints, WithStrictBackup(false))
	resp, err := c.GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	assert.Equal(t, "4", resp.Error.TypeCode)
}

func TestLenientBackupStillFailsOnTransport(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: netErr("primary down"),
		testEndpoints.Backup:  netErr("backup down"),
	})
	c := New(ft, testEndpoints, WithStrictBackup(false))
	_, err := c.GetAddressInfo(context.Background(), liveReq())
	var fe *FailoverError
	assert.True(t, errors.As(err, &fe))
}

func TestCanceledContextSkipsBackup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ft := newFake(map[string]reply{
		testEndpoints.Primary: func(ctx context.Context) (*model.AddressInfoResponse, error) {
			cancel()
			return nil, ctx.Err()
		},
		testEndpoints.Backup: ok(backupInfo),
	})
	_, err := New(ft, testEndpoints).GetAddressInfo(ctx, liveReq())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, ft.Calls(), 1)
}

func TestPerAttemptTimeoutFailsOver(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: func(ctx context.Context) (*model.AddressInfoResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		testEndpoints.Backup: ok(backupInfo),
	})
	req := liveReq()
	req.TimeoutSeconds = 1

	start := time.Now()
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, backupInfo, resp.AddressInfo)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNilResponseIsTransportFailure(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: func(context.Context) (*model.AddressInfoResponse, error) { return nil, nil },
		testEndpoints.Backup:  ok(backupInfo),
	})
	resp, err := New(ft, testEndpoints).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)
	assert.Equal(t, backupInfo, resp.AddressInfo)
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	var mu sync.Mutex
	var seen []Attempt
	obs := ObserverFunc(func(a Attempt) {
		mu.Lock()
		seen = append(seen, a)
		mu.Unlock()
	})
	ft := newFake(map[string]reply{
		testEndpoints.Primary: svcErr("3"),
		testEndpoints.Backup:  ok(backupInfo),
	})
	_, err := New(ft, testEndpoints, WithObserver(obs)).GetAddressInfo(context.Background(), liveReq())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, RolePrimary, seen[0].Role)
	assert.Equal(t, OutcomeRetryableError, seen[0].Outcome)
	assert.Equal(t, "fake", seen[0].Transport)
	assert.Equal(t, RoleBackup, seen[1].Role)
	assert.Equal(t, OutcomeOK, seen[1].Outcome)
	assert.NoError(t, seen[1].Err)
}

func TestClientConcurrentUse(t *testing.T) {
	ft := newFake(map[string]reply{
		testEndpoints.Primary: netErr("down"),
		testEndpoints.Backup:  ok(backupInfo),
	})
	c := New(ft, testEndpoints)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.GetAddressInfo(context.Background(), liveReq())
			assert.NoError(t, err)
			assert.Equal(t, backupInfo, resp.AddressInfo)
		}()
	}
	wg.Wait()
	assert.Len(t, ft.Calls(), 32)
}

func TestEndpointsDefaults(t *testing.T) {
	c := New(newFake(nil), Endpoints{Primary: "http://p.example/"})
	eps := c.Endpoints()
	assert.Equal(t, "http://p.example", eps.Primary)
	assert.Equal(t, DefaultBackupURL, eps.Backup)
	assert.Equal(t, DefaultTrialURL, eps.Trial)
}
