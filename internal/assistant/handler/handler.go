// Package handler provides the HTTP handlers of the assistant service.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: data})
}

func okWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: message})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Code: status, Message: err.Error()})
}

func failMessage(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Code: status, Message: message})
}

// propertyIDQuery parses the required property_id query parameter.
func propertyIDQuery(c *gin.Context) (int64, bool) {
	raw := c.Query("property_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		failMessage(c, http.StatusBadRequest, "property_id 必须是正整数")
		return 0, false
	}
	return id, true
}
