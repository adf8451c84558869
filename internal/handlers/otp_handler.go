package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/joshua-takyi/workwave/internal/services"
)

func GenerateOTP(o *services.OTPService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("phone is required"))
			return
		}

		if _, err := o.Generate(c.Request.Context(), req.Phone); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "OTP sent successfully"))
	}
}

func VerifyOTP(o *services.OTPService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone" binding:"required"`
			OTP   string `json:"otp" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("phone and otp are required"))
			return
		}

		if err := o.Verify(c.Request.Context(), req.Phone, req.OTP); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Phone number verified"))
	}
}
