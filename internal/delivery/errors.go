package delivery

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func httpStatusForCode(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. Collaborator messages are passed
// through unchanged.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Warnf("Handler Error: Validation failed on %s: %s", verr.Field, verr.Message)
		ErrorResponse(c, http.StatusBadRequest, verr.Message)
		return
	case errors.Is(err, domain.ErrAuthRequired):
		RedirectResponse(c, http.StatusUnauthorized, err.Error(), domain.LoginPath)
		return
	case errors.Is(err, domain.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, domain.ErrSubmissionInProgress):
		ErrorResponse(c, http.StatusConflict, err.Error())
		return
	}

	st, ok := status.FromError(err)
	if !ok {
		logger.Errorf("Handler Error: Non-status error encountered: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpStatus := httpStatusForCode(st.Code())
	logger.Warnf("Handler Error: Mapped status error (Code: %s, Message: '%s') to HTTP Status %d", st.Code(), st.Message(), httpStatus)
	if st.Code() == codes.Unauthenticated {
		RedirectResponse(c, httpStatus, st.Message(), domain.LoginPath)
		return
	}
	ErrorResponse(c, httpStatus, st.Message())
}
