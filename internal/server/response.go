package server

import "github.com/gin-gonic/gin"

// Error codes carried in the response envelope.
const (
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeUnsupportedFormat = "ERR_UNSUPPORTED_FORMAT"
	ErrCodeUploadTooLarge    = "ERR_UPLOAD_TOO_LARGE"
	ErrCodeUnreadableLedger  = "ERR_UNREADABLE_LEDGER"
	ErrCodeReport            = "ERR_REPORT"
	ErrCodeInternal          = "ERR_INTERNAL"
)

// Response is the JSON envelope for every non-file response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}
