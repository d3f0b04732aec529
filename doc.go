// Package verdant is the Verdant API server, a plant-community social
// backend.

// Entry points live under cmd/; the application is organized into
// subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: JWT authentication service and middleware
// - internal/visibility: Viewer exclusion sets and content query filtering
// - internal/moderation: Report pipeline with threshold auto-hide
// - internal/search: Elasticsearch search with database fallback
// - internal/trending: Hashtag popularity tracking backed by Redis
// - internal/database: Database connection and migrations
// - internal/cache: Redis client
// - internal/middleware: HTTP middleware (rate limiting, metrics, logging)
// - internal/telemetry: OpenTelemetry tracing
// - internal/seed: Development data seeding

// See the individual package documentation for detailed API reference.
package verdant
