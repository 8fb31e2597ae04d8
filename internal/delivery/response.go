package delivery

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status     string      `json:"Status"`
	Message    string      `json:"Message"`
	Data       interface{} `json:"Data,omitempty"`
	RedirectTo string      `json:"RedirectTo,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// RedirectResponse tells the client to navigate to path before retrying.
func RedirectResponse(c *gin.Context, statusCode int, message, path string) {
	c.JSON(statusCode, Response{
		Status:     "Fail",
		Message:    message,
		RedirectTo: path,
	})
}
