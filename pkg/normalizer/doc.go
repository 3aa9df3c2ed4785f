// Package normalizer classifies gateway responses and turns them into status
// documents.
//
// JSON responses are served unchanged. An HTML dashboard means the gateway is
// up but exposes no API, so a synthesized document is produced instead (see
// status.Synthesize). Empty, malformed and unrecognized responses are
// rejected with *ClassifyError so the prober can try the next candidate path.
package normalizer
