package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CampaignMetrics records fan-out outcomes.
type CampaignMetrics struct {
	duration   *prometheus.HistogramVec
	sent       *prometheus.CounterVec
	failures   *prometheus.CounterVec
	recipients prometheus.Histogram
}

// NewCampaignMetrics registers the campaign metrics on the provided registerer.
func NewCampaignMetrics(reg prometheus.Registerer) *CampaignMetrics {
	if reg == nil {
		return &CampaignMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campaign_send_duration_seconds",
		Help:    "Duration of campaign fan-outs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaigns_sent_total",
		Help: "Completed campaign fan-outs.",
	}, []string{"type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_send_failures_total",
		Help: "Campaign fan-outs that did not reach completed.",
	}, []string{"type"})
	recipients := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "campaign_recipients",
		Help:    "Recipient counts per campaign fan-out.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	reg.MustRegister(duration, sent, failures, recipients)
	return &CampaignMetrics{
		duration:   duration,
		sent:       sent,
		failures:   failures,
		recipients: recipients,
	}
}

// ObserveSend records a completed fan-out.
func (c *CampaignMetrics) ObserveSend(campaignType string, recipients int, duration time.Duration) {
	if c == nil || c.sent == nil {
		return
	}
	label := normalizeLabel(campaignType)
	c.sent.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
	c.recipients.Observe(float64(recipients))
}

// IncFailure records a fan-out that failed before completion.
func (c *CampaignMetrics) IncFailure(campaignType string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(campaignType)).Inc()
}
