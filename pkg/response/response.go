package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lifeline/pkg/errors"
)

// Body is the envelope every JSON response uses.
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

// Fail writes an error envelope with an explicit HTTP status.
func Fail(c *gin.Context, status int, code int, message string) {
	c.AbortWithStatusJSON(status, Body{Code: code, Message: message})
}

// Error writes the envelope for a service error, mapping the error code to
// an HTTP status.
func Error(c *gin.Context, err error) {
	Fail(c, errors.HTTPStatus(err), errors.GetCode(err), errors.GetMessage(err))
}
