// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics provides the service instrumentation, exposed in the
// Prometheus text format.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/readeck/blockdata/pkg/blocks"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockdata",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	parseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockdata",
		Name:      "parse_total",
		Help:      "Number of parse requests, by outcome.",
	}, []string{"outcome"})

	parseWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockdata",
		Name:      "parse_warnings_total",
		Help:      "Number of warnings raised by parse requests.",
	})

	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blockdata",
		Name:      "parse_duration_seconds",
		Help:      "Duration of parse requests.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	})

	usageTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockdata",
		Name:      "usage_total",
		Help:      "Number of times the parser has been invoked.",
	})
)

// Middleware records the duration and status of every HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		httpDuration.
			WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// Handler returns the metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Usage counts parser invocations. It implements [blocks.UsageRecorder].
type Usage struct{}

// RecordUsage implements [blocks.UsageRecorder].
func (Usage) RecordUsage() {
	usageTotal.Inc()
}

// ObserveParse records the duration, outcome and warnings of a parse
// call. The outcome is "ok" or the structured error code.
func ObserveParse(elapsed time.Duration, res *blocks.Result, err error) {
	parseDuration.Observe(elapsed.Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "internal"
		var perr *blocks.Error
		if errors.As(err, &perr) {
			outcome = perr.Code
		}
	}
	parseTotal.WithLabelValues(outcome).Inc()

	if res != nil {
		parseWarnings.Add(float64(len(res.Warnings)))
	}
}
