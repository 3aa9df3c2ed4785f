package proxy

import (
	"errors"

	"miyabi-hq/statusproxy/pkg/prober"
	"miyabi-hq/statusproxy/pkg/proxy/types"
	"miyabi-hq/statusproxy/pkg/refresher"
)

// HandleError converts an error from the status pipeline into the body sent
// to the client. Upstream failures become 502s carrying every per-path
// reason; anything else is an opaque 500.
func HandleError(err error) *types.ErrorResponse {
	var unavailable *refresher.UnavailableError
	if errors.As(err, &unavailable) {
		return types.NewBadGatewayError(unavailable.Message, unavailable.Details)
	}

	var probeErr *prober.ProbeError
	if errors.As(err, &probeErr) {
		return types.NewBadGatewayError(probeErr.Error(), probeErr.Details())
	}

	return types.NewServerError()
}
