// Package config handles configuration loading for the trailhead API server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TRAILHEAD_JWT_SECRET}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  token_ttl: "24h"
//	ratelimit:
//	  window: "1h"
//
// # Configuration Sections
//
// Server and mode:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	environment: "production"   # development | production
//
// The environment flag is the single switch selecting verbose (development)
// versus minimal (production) error rendering; nothing else changes the
// admission pipeline's behavior.
//
// Database:
//
//	database:
//	  path: "/var/lib/trailhead/trailhead.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${TRAILHEAD_JWT_SECRET}"   # at least 32 bytes
//	  token_ttl: "24h"
//
// Rate limiting:
//
//	ratelimit:
//	  max: 100
//	  window: "1h"
//	  redis_addr: ""   # set to share counters across instances
//
//	login:
//	  rps: 1
//	  burst: 5
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
