package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

// ValidationFailedBody is the body returned when a form submission fails validation.
type ValidationFailedBody struct {
	Error   string `json:"error" example:"Validation Failed"`
	Details string `json:"details" example:"age: must be greater than 0 and less than 150"`
}

func errorResponse(params APIErrorParams) APIResponse {
	return APIResponse{
		Success: false,
		Error:   params.Err.Error(),
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	}
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusNotFound, errorResponse(params))
}

// CallTooManyRequests is for return API response when a client exceeded its rate limit
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(params))
}

// CallServerError is for return API response server error
func CallServerError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusInternalServerError, errorResponse(params))
}

// CallServiceUnavailable is for return API response when a dependency is down
func CallServiceUnavailable(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusServiceUnavailable, errorResponse(params))
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Error:   "",
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallValidationFailed answers a rejected form submission. The status stays 200.
func CallValidationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusOK, ValidationFailedBody{
		Error:   "Validation Failed",
		Details: err.Error(),
	})
}
