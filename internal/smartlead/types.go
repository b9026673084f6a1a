package smartlead

// Campaign is one Smartlead campaign row.
type Campaign struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// CampaignAnalytics holds per-campaign send metrics.
type CampaignAnalytics struct {
	CampaignID   int64  `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Status       string `json:"status"`

	EmailsSent      int64 `json:"emails_sent"`
	EmailsDelivered int64 `json:"emails_delivered"`
	EmailsOpened    int64 `json:"emails_opened"`
	LinksClicked    int64 `json:"links_clicked"`
	Replies         int64 `json:"replies"`
	Bounced         int64 `json:"bounced"`
	Unsubscribed    int64 `json:"unsubscribed"`
}

// EmailAccount is one connected sending mailbox.
type EmailAccount struct {
	ID        int64  `json:"id"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

// Summary aggregates metrics across all campaigns with derived rates.
type Summary struct {
	Platform       string              `json:"platform"`
	DateRangeDays  int                 `json:"date_range_days"`
	TotalCampaigns int                 `json:"total_campaigns"`
	TotalSent      int64               `json:"total_emails_sent"`
	TotalDelivered int64               `json:"total_emails_delivered"`
	DeliveryRate   float64             `json:"delivery_rate"`
	TotalOpened    int64               `json:"total_opened"`
	OpenRate       float64             `json:"open_rate"`
	TotalClicked   int64               `json:"total_clicked"`
	ClickRate      float64             `json:"click_rate"`
	TotalReplied   int64               `json:"total_replied"`
	ReplyRate      float64             `json:"reply_rate"`
	TotalBounced   int64               `json:"total_bounced"`
	BounceRate     float64             `json:"bounce_rate"`
	TotalUnsubs    int64               `json:"total_unsubscribed"`
	Campaigns      []CampaignAnalytics `json:"campaigns_data"`
}
