package clients

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

const (
	msgFallback    = "Something went wrong"
	msgUnreachable = "Unable to connect to server. Please check if the server is running."
	msgTimeout     = "Request timed out"
	msgBadResponse = "Invalid response from server"
)

// codeForHTTPStatus maps a backend HTTP status onto a gRPC status code.
func codeForHTTPStatus(status int) codes.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return codes.Unavailable
	}
	if status >= 500 {
		return codes.Internal
	}
	return codes.Unknown
}
