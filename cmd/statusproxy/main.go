// Statusproxy serves a gateway's status document to dashboards.
//
// It probes the gateway on a fixed list of candidate paths, keeps the last
// good answer in memory and serves it on /status and /. JSON answers are
// relayed byte for byte; an HTML dashboard is turned into a minimal status
// document. Clients keep getting the cached document while the gateway is
// down.
//
// Usage:
//
//	# Start with defaults (listen on :18795, gateway at 127.0.0.1:18789)
//	statusproxy run
//
//	# Start with a configuration file, hot-reloaded on change
//	statusproxy run --config /etc/statusproxy/config.yaml
//
//	# Probe the gateway once and print what would be served
//	statusproxy probe --output json
//
//	# Validate configuration and print the effective values
//	statusproxy config validate
package main

import "os"

func main() {
	os.Exit(Execute())
}
