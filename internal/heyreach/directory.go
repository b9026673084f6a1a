package heyreach

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// AccountLister fetches the remote LinkedIn account directory.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

// Directory resolves the sender list, preferring manually pinned
// sender IDs over the remote account directory.
type Directory struct {
	api AccountLister
	cfg config.HeyReachConfig
}

// NewDirectory creates a sender directory backed by the given API.
func NewDirectory(api AccountLister, cfg config.HeyReachConfig) *Directory {
	return &Directory{api: api, cfg: cfg}
}

// ResolveSenders returns the effective sender list.
//
// Manually configured sender IDs win unless forceRemote is set. When
// the remote directory is consulted and fails (or comes back empty),
// manual IDs are the fallback; resolution never returns an error, only
// a possibly empty list.
func (d *Directory) ResolveSenders(ctx context.Context, forceRemote bool) []Sender {
	if len(d.cfg.SenderIDs) > 0 && !forceRemote {
		logger.Info("heyreach: using manually configured senders", "count", len(d.cfg.SenderIDs))
		return d.manualSenders()
	}

	accounts, err := d.api.ListAccounts(ctx)
	if err != nil {
		logger.Warn("heyreach: account directory fetch failed", "error", err.Error())
	}

	if len(accounts) == 0 {
		if len(d.cfg.SenderIDs) > 0 {
			logger.Info("heyreach: falling back to manually configured senders", "count", len(d.cfg.SenderIDs))
			return d.manualSenders()
		}
		logger.Warn("heyreach: no senders available, configure sender_ids or check the API key")
		return []Sender{}
	}

	senders := make([]Sender, 0, len(accounts))
	for _, account := range accounts {
		senders = append(senders, Sender{
			ID:   account.ID,
			Name: d.senderName(account.ID, account.Label),
		})
	}
	return senders
}

func (d *Directory) manualSenders() []Sender {
	senders := make([]Sender, 0, len(d.cfg.SenderIDs))
	for _, id := range d.cfg.SenderIDs {
		senders = append(senders, Sender{ID: id, Name: d.senderName(id, "")})
	}
	return senders
}

// senderName resolves a display name: the configured mapping first,
// then the remote label, then a synthetic "Sender {id}".
func (d *Directory) senderName(id int64, remoteLabel string) string {
	if name := d.cfg.SenderName(id); name != "" {
		return name
	}
	if remoteLabel != "" {
		return remoteLabel
	}
	return fmt.Sprintf("Sender %d", id)
}
