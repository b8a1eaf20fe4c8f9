// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

/*
Package middleware provides HTTP middleware for the destination API.

Key Components:

  - RequestID: request tracking that feeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per route
  - Compression: gzip for larger JSON responses

All middleware use the func(http.Handler) http.Handler shape so they plug
straight into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.With(middleware.Compression).Get("/v1/debug/calls", handler)

Metrics are labelled with the chi route pattern rather than the raw path so
that label cardinality stays bounded.
*/
package middleware
