package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"

	"storefront-auth/logger"
	otpModel "storefront-auth/models/otp"
	otpService "storefront-auth/services/otp"
	"storefront-auth/types"
)

// Controller exposes the support surface: pending-code lookup for when
// delivery failed, and expired-row purge.
type Controller struct {
	OTPService *otpService.Service
}

func NewAdminController(svc *otpService.Service) *Controller {
	return &Controller{OTPService: svc}
}

// OTPStatus handles GET /api/admin/otp/status. Support staff use it to
// read a customer's pending code back when the channel never delivered.
func (ac *Controller) OTPStatus(c *fiber.Ctx) error {
	email := c.Query("email")
	phone := c.Query("phone")
	flow, ok := otpModel.ParseFlowType(c.Query("flowType"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message:   "Invalid flow type",
			ErrorCode: otpService.CodeInvalidRequest,
			Status:    fiber.StatusBadRequest,
		})
	}

	rec, err := ac.OTPService.LatestPending(email, phone, flow)
	if err != nil {
		if code := otpService.ErrorCode(err); code != "" {
			return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Message:   err.Error(),
				ErrorCode: code,
				Status:    fiber.StatusBadRequest,
			})
		}
		logger.Error("Failed to look up pending OTP", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
			Message: "No pending code for this target",
			Status:  fiber.StatusNotFound,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Pending code",
		Status:  fiber.StatusOK,
		Data:    rec,
	})
}

// PurgeExpired handles POST /api/admin/otp/purge. Rows that expired today
// are kept so support lookups still work; anything older goes.
func (ac *Controller) PurgeExpired(c *fiber.Ctx) error {
	cutoff := now.BeginningOfDay()

	deleted, err := ac.OTPService.PurgeExpiredBefore(cutoff)
	if err != nil {
		logger.Error("Failed to purge expired OTPs", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logger.Success(fmt.Sprintf("Purged %d expired OTP rows", deleted))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: fmt.Sprintf("Purged %d expired rows", deleted),
		Status:  fiber.StatusOK,
	})
}
