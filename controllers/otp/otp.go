package otp

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront-auth/logger"
	otpModel "storefront-auth/models/otp"
	otpService "storefront-auth/services/otp"
	sessionService "storefront-auth/services/session"
	"storefront-auth/types"
	otpTypes "storefront-auth/types/otp"
	"storefront-auth/utils"
)

// Controller handles OTP issuance and verification requests.
type Controller struct {
	OTPService *otpService.Service
	Sessions   *sessionService.Service
	Logger     *logger.AsyncLogger
}

func NewOTPController(svc *otpService.Service, sessions *sessionService.Service, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{
		OTPService: svc,
		Sessions:   sessions,
		Logger:     asyncLogger,
	}
}

// Issue handles POST /api/otp/issue.
func (oc *Controller) Issue(c *fiber.Ctx) error {
	var req otpTypes.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message:   "Invalid request body",
			ErrorCode: otpService.CodeInvalidRequest,
			Status:    fiber.StatusBadRequest,
		})
	}

	flow, ok := otpModel.ParseFlowType(req.FlowType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message:   "Invalid flow type",
			ErrorCode: otpService.CodeInvalidRequest,
			Status:    fiber.StatusBadRequest,
		})
	}

	result, err := oc.OTPService.Issue(req.Email, req.Phone, flow)
	if err != nil {
		return oc.failWith(c, err, "Failed to issue OTP")
	}

	oc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OTP issued",
		Status:  fiber.StatusOK,
		Data: otpTypes.IssueResponse{
			Success:   true,
			Channel:   string(result.Record.Channel),
			Delivered: result.Delivered,
			ExpiresAt: result.Record.ExpiresAt.Format("2006-01-02 15:04:05"),
		},
	})
}

// Verify handles POST /api/otp/verify. Login and signup set the session
// cookie on success; recovery returns the reset capability token instead.
func (oc *Controller) Verify(c *fiber.Ctx) error {
	var req otpTypes.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message:   "Invalid request body",
			ErrorCode: otpService.CodeInvalidRequest,
			Status:    fiber.StatusBadRequest,
		})
	}

	flow, ok := otpModel.ParseFlowType(req.FlowType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message:   "Invalid flow type",
			ErrorCode: otpService.CodeInvalidRequest,
			Status:    fiber.StatusBadRequest,
		})
	}

	establish := func(accountUuid string, isAdmin bool) error {
		return oc.Sessions.Establish(c, accountUuid, isAdmin)
	}

	result, err := oc.OTPService.Verify(req.Email, req.Phone, req.Code, flow, req.Password, establish)
	if err != nil {
		return oc.failWith(c, err, "Failed to verify OTP")
	}

	resp := otpTypes.VerifyResponse{
		Success:        true,
		Verified:       true,
		AccountCreated: result.AccountCreated,
		ResetToken:     result.ResetToken,
	}
	if result.Account != nil && flow != otpModel.FlowRecovery {
		view := result.Account.ToView()
		resp.Account = &view
	}

	oc.Logger.Log(utils.CreateSanitizedLogEntry(c))

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "OTP verified",
		Status:  fiber.StatusOK,
		Data:    resp,
	})
}

// failWith maps service errors onto HTTP responses with stable codes.
// Errors without a code are server faults.
func (oc *Controller) failWith(c *fiber.Ctx, err error, logMessage string) error {
	if code := otpService.ErrorCode(err); code != "" {
		status := fiber.StatusBadRequest
		if errors.Is(err, otpService.ErrAccountExists) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(types.ErrorResponse{
			Message:   err.Error(),
			ErrorCode: code,
			Status:    status,
		})
	}

	logger.Error(logMessage, err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
		Message: "Internal server error",
		Status:  fiber.StatusInternalServerError,
	})
}
