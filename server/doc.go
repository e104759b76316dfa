// Package server hosts the Discogs tools over HTTP.
//
// POST /mcp accepts JSON-RPC 2.0 requests with the methods initialize,
// tools/list, tools/call and ping. Requests without an id are treated as
// notifications and acknowledged with 202 Accepted. Health endpoints come
// from package health and /metrics serves the Prometheus registry when one
// is configured.
//
// Tool failures never surface as JSON-RPC errors: a tools/call result always
// carries the tool's value, its notifications and an isError flag. JSON-RPC
// errors are reserved for malformed requests, unknown methods and invalid
// parameters.
package server
