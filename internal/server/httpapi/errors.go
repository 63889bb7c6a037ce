package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// errorKinds is checked in order; the first sentinel matched by errors.Is
// decides the response.
var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{common.ErrResetTokenExpired, http.StatusBadRequest, "reset_token_expired"},
	{common.ErrorValidation, http.StatusBadRequest, "validation_error"},
	{common.ErrorAlreadyExists, http.StatusBadRequest, "already_exists"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrorForbidden, http.StatusForbidden, "forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
}

// classify maps err to an HTTP status and a client-safe envelope. Unknown
// errors become an opaque 500.
func classify(err error) (int, APIError) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			msg := common.Detail(err)
			if msg == "" {
				msg = k.kind.Error()
			}
			return k.status, APIError{Message: msg, Code: k.code}
		}
	}
	return http.StatusInternalServerError, APIError{Message: "internal server error", Code: "internal_error"}
}

func (s *Server) respondError(c *gin.Context, err error) {
	status, apiErr := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

// bindJSON decodes the body into dst, answering 400 on failure.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, common.Validationf("invalid request body: %s", err.Error()))
		return false
	}
	return true
}
