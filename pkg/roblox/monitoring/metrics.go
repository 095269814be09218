package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RobloxLatency is the duration of Roblox API requests.
	RobloxLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "roblox_api_latency",
			Help: "Duration of Roblox API requests",
		},
		[]string{"endpoint"},
	)

	// RobloxTotalRequests is the total number of Roblox API requests.
	RobloxTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roblox_api_total_requests",
			Help: "Total number of Roblox API requests",
		},
		[]string{"endpoint", "outcome"},
	)
)
