// Package proxy holds the HTTP-facing pieces of the status proxy.
//
// The server itself lives in package server; this package and its
// subpackages provide what it is assembled from:
//
//   - handlers: the status endpoint and the JSON 404/405 handlers
//   - middleware: request IDs, CORS, logging, metrics and panic recovery
//   - types: error bodies
//
// The helpers here write every response the proxy generates. Status bodies
// are written byte for byte as cached; error bodies are small JSON objects
// with an "error" field. All responses are application/json with
// Cache-Control: no-store, and HEAD requests receive headers only.
package proxy
