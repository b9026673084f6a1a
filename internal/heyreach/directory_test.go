package heyreach

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-monitor/internal/config"
)

type fakeLister struct {
	accounts []Account
	err      error
	calls    int
}

func (f *fakeLister) ListAccounts(ctx context.Context) ([]Account, error) {
	f.calls++
	return f.accounts, f.err
}

func heyreachCfg() config.HeyReachConfig {
	return config.HeyReachConfig{
		SenderIDs: []int64{101, 102},
		SenderNames: map[int64]string{
			101: "Alice Johnson",
		},
		RawSenderNames: map[string]string{
			"102": "Bob Smith",
		},
	}
}

func TestResolveSendersManualPrecedence(t *testing.T) {
	api := &fakeLister{accounts: []Account{{ID: 999, Label: "Remote Only"}}}
	dir := NewDirectory(api, heyreachCfg())

	senders := dir.ResolveSenders(context.Background(), false)
	require.Len(t, senders, 2)
	assert.Equal(t, Sender{ID: 101, Name: "Alice Johnson"}, senders[0])
	// Raw string key fallback
	assert.Equal(t, Sender{ID: 102, Name: "Bob Smith"}, senders[1])
	// No remote call when manual IDs are configured
	assert.Equal(t, 0, api.calls)
}

func TestResolveSendersForceRemote(t *testing.T) {
	api := &fakeLister{accounts: []Account{
		{ID: 101, Label: "Remote Alice"},
		{ID: 300, Label: "Carol Remote"},
		{ID: 301, Label: ""},
	}}
	dir := NewDirectory(api, heyreachCfg())

	senders := dir.ResolveSenders(context.Background(), true)
	require.Len(t, senders, 3)
	assert.Equal(t, 1, api.calls)

	// Configured name beats the remote label
	assert.Equal(t, "Alice Johnson", senders[0].Name)
	// Remote label used when unconfigured
	assert.Equal(t, "Carol Remote", senders[1].Name)
	// Synthetic name as last resort
	assert.Equal(t, "Sender 301", senders[2].Name)
}

func TestResolveSendersRemoteFailureFallsBackToManual(t *testing.T) {
	api := &fakeLister{err: errors.New("boom")}
	dir := NewDirectory(api, heyreachCfg())

	senders := dir.ResolveSenders(context.Background(), true)
	require.Len(t, senders, 2)
	assert.Equal(t, "Alice Johnson", senders[0].Name)
}

func TestResolveSendersRemoteEmptyFallsBackToManual(t *testing.T) {
	api := &fakeLister{}
	dir := NewDirectory(api, heyreachCfg())

	senders := dir.ResolveSenders(context.Background(), true)
	require.Len(t, senders, 2)
}

func TestResolveSendersNothingAvailable(t *testing.T) {
	api := &fakeLister{err: errors.New("boom")}
	dir := NewDirectory(api, config.HeyReachConfig{})

	senders := dir.ResolveSenders(context.Background(), false)
	assert.NotNil(t, senders)
	assert.Empty(t, senders)
}
