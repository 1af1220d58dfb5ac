package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
)

// KindForStatus maps an HTTP status code to a backend error kind.
func KindForStatus(code int) ai.ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ai.KindAuth
	case http.StatusTooManyRequests:
		return ai.KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ai.KindTimeout
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ai.KindBackendUnavailable
	default:
		return ai.KindProtocol
	}
}

// statusError builds the error for a non-200 response. The body is read
// only to enrich the message.
func statusError(backend, model string, resp *http.Response) *ai.BackendError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("%s API returned status: %s", backend, resp.Status)
	if len(snippet) > 0 {
		err = fmt.Errorf("%s API returned status: %s: %s", backend, resp.Status, snippet)
	}
	return ai.NewBackendError(KindForStatus(resp.StatusCode), backend, model, err)
}

// transportError classifies a failure to get any response at all.
func transportError(backend, model string, err error) *ai.BackendError {
	var be *ai.BackendError
	if errors.As(err, &be) {
		return be
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ai.NewBackendError(ai.KindTimeout, backend, model, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ai.NewBackendError(ai.KindTimeout, backend, model, err)
	}
	return ai.NewBackendError(ai.KindBackendUnavailable, backend, model, err)
}

func protocolError(backend, model string, err error) *ai.BackendError {
	return ai.NewBackendError(ai.KindProtocol, backend, model, err)
}

func authError(backend, model, msg string) *ai.BackendError {
	return ai.NewBackendError(ai.KindAuth, backend, model, errors.New(msg))
}
