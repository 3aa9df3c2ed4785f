// Package types defines the JSON bodies the proxy writes itself.
//
// Status documents are passed through as raw bytes and have no type here;
// see package status. Everything in this package is an error body:
//
//	{"error":"not found","path":"/nope"}
//	{"error":"method not allowed"}
//	{"error":"failed to call upstream","detail":"...","details":["/status: ..."]}
//
// Field order in the encoded JSON follows the struct field order.
package types
