// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus instrumentation for the A2A runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveBuses tracks buses registered for in-flight tasks.
	ActiveBuses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "a2a_active_event_buses",
			Help: "Number of event buses registered for in-flight tasks",
		},
	)

	// EventsPublished counts events published across all buses.
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "a2a_events_published_total",
			Help: "Total number of events published to task event buses",
		},
	)

	// RequestsTotal counts runtime operations by method and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2a_requests_total",
			Help: "Total number of A2A runtime operations",
		},
		[]string{"method", "status"},
	)

	// PushNotificationsTotal counts webhook deliveries by outcome.
	PushNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2a_push_notifications_total",
			Help: "Total number of push notification deliveries",
		},
		[]string{"status"},
	)

	// PushNotificationDuration tracks webhook dispatch latency.
	PushNotificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "a2a_push_notification_duration_seconds",
			Help:    "Push notification dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
