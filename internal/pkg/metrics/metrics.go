package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GuardRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_rejections_total",
			Help: "Writes blocked by a quota or cooldown guard",
		},
		[]string{"check", "reason"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications committed by the fan-out engine",
		},
		[]string{"kind"},
	)

	FanoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_fanout_failures_total",
			Help: "Fan-out attempts that failed and rolled back their trigger",
		},
		[]string{"event"},
	)

	SideChannelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "side_channel_failures_total",
			Help: "Best-effort deliveries (email, push) that failed",
		},
		[]string{"channel"},
	)
)
