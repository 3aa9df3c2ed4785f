// Package status defines the status document served to dashboard clients.
//
// Documents travel through the proxy as Raw bytes so that a gateway's JSON is
// served exactly as received. The typed Document view is used only where the
// proxy produces a document itself (Synthesize, Placeholder) or inspects one
// for diagnostics (Decode).
//
// Every document the proxy builds is ASCII-safe: non-ASCII runes such as the
// state glyphs are written as \uXXXX escapes.
package status
