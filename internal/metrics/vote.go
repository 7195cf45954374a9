package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoteMetrics holds Prometheus metrics for vote application and the feed.
type VoteMetrics struct {
	VotesProcessed     *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	VotesByTarget      *prometheus.CounterVec
	FeedPageSize       prometheus.Histogram
}

// NewVoteMetrics creates and registers vote and feed metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total number of votes processed, by result.",
		}, []string{"result"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "votes_processing_duration_seconds",
			Help:      "Duration of vote processing in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		VotesByTarget: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_by_target_total",
			Help:      "Total number of applied votes, by target direction.",
		}, []string{"target"}),
		FeedPageSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_page_size",
			Help:      "Number of posts returned per feed page.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50},
		}),
	}

	reg.MustRegister(m.VotesProcessed, m.ProcessingDuration, m.VotesByTarget, m.FeedPageSize)
	return m
}
