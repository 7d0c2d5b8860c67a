package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/holoshare/holoshare-backend/internal/pkg/errors"
)

// ErrorBody is the error payload shape of the public API
type ErrorBody struct {
	Detail string `json:"detail"`
}

// OK writes a 200 response with the given payload
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error writes an error response with a detail message
func Error(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, ErrorBody{Detail: detail})
}

// BadRequest writes a 400 error
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// NotFound writes a 404 error
func NotFound(c *gin.Context, detail string) {
	Error(c, http.StatusNotFound, detail)
}

// InternalError writes a 500 error
func InternalError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}

// ServiceUnavailable writes a 503 error
func ServiceUnavailable(c *gin.Context, detail string) {
	Error(c, http.StatusServiceUnavailable, detail)
}

// HandleError converts an error into the matching HTTP error response.
// AppError codes carry their own status; anything else is a 500.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	httpStatus := apperrors.GetHTTPStatus(code)

	detail := apperrors.GetMessage(code)
	if d := apperrors.GetDetails(err); d != "" && apperrors.IsClientError(code) {
		detail = apperrors.FormatError(code, d)
	}

	c.JSON(httpStatus, ErrorBody{Detail: detail})
}
