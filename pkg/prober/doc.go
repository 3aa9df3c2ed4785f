// Package prober finds a usable status document on the gateway.
//
// Candidate paths are tried strictly in order, each with its own timeout.
// A path is rejected on connection failure, timeout, a non-2xx status, an
// oversized or empty body, invalid JSON or an unrecognized content type.
// The first path whose response the normalizer accepts wins; if none does,
// Probe returns a *ProbeError carrying every rejection in order.
//
//	p, err := prober.New(prober.Config{
//	    Fetcher:    client,
//	    Normalizer: normalizer.New(normalizer.Config{Hostname: "AAI"}),
//	    Paths:      []string{"/status", "/"},
//	    Timeout:    5 * time.Second,
//	}, prober.WithRecorder(collector))
package prober
