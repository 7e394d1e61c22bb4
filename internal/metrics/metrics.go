package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "promptbay"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by route group."},
		[]string{"group"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by route group."},
		[]string{"group"},
	)
	Upvotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "upvotes_total", Help: "Upvote attempts by outcome (accepted, duplicate, not_found, error)."},
		[]string{"outcome"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "submissions_total", Help: "Submissions by final status (invalid, forwarded, failed)."},
		[]string{"status"},
	)
	Listings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "listing_requests_total", Help: "Listing queries by sort key."},
		[]string{"sort"},
	)
	SeededPrompts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "seeded_prompts_total", Help: "Prompts written by the seeder, by source and result."},
		[]string{"source", "result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Upvotes)
	reg.MustRegister(Submissions)
	reg.MustRegister(Listings)
	reg.MustRegister(SeededPrompts)
}
