// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the stream-panel API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, limiter)

The limiter may be nil, which disables chat rate limiting.

# Endpoints

	GET /health - Liveness check
	GET /       - API banner
	/auth       - User directory (any method)
	/chat       - Chat log (any method)
	/video      - Video and poll panel (any method)

The three groups are registered without a method so their handlers can
answer unsupported methods with a JSON error. Wrap the mux with
middleware.CORS to answer preflight requests.
*/
package router
