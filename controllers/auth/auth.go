package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront-auth/logger"
	"storefront-auth/middleware"
	accountService "storefront-auth/services/account"
	recoveryService "storefront-auth/services/recovery"
	sessionService "storefront-auth/services/session"
	"storefront-auth/types"
	authTypes "storefront-auth/types/auth"
	"storefront-auth/utils"
)

// Controller handles the session-adjacent endpoints: password reset
// completion, profile, logout.
type Controller struct {
	Accounts *accountService.Service
	Recovery *recoveryService.Service
	Sessions *sessionService.Service
	Logger   *logger.AsyncLogger
}

func NewAuthController(accounts *accountService.Service, recovery *recoveryService.Service, sessions *sessionService.Service, asyncLogger *logger.AsyncLogger) *Controller {
	return &Controller{
		Accounts: accounts,
		Recovery: recovery,
		Sessions: sessions,
		Logger:   asyncLogger,
	}
}

// ResetPassword handles POST /api/auth/reset-password. The token is the
// single-use capability minted by a recovery verification; without a live
// one the reset is refused.
func (h *Controller) ResetPassword(c *fiber.Ctx) error {
	var req authTypes.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}

	if req.Token == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message: "Token and password are required",
			Status:  fiber.StatusBadRequest,
		})
	}

	accountUuid, err := h.Recovery.Redeem(req.Token)
	if err != nil {
		if errors.Is(err, recoveryService.ErrInvalidToken) {
			return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Message:   err.Error(),
				ErrorCode: recoveryService.CodeInvalidResetToken,
				Status:    fiber.StatusBadRequest,
			})
		}
		logger.Error("Failed to redeem reset token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}

	if err := h.Accounts.UpdatePassword(accountUuid, req.Password); err != nil {
		logger.Error("Failed to update password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}

	h.Logger.Log(utils.CreateSanitizedLogEntry(c))
	logger.Success("Password reset completed for account " + accountUuid)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Password updated",
		Status:  fiber.StatusOK,
	})
}

// Profile handles GET /api/auth/profile.
func (h *Controller) Profile(c *fiber.Ctx) error {
	accountUuid := middleware.AccountUUID(c)

	acct, err := h.Accounts.FindByUuid(accountUuid)
	if err != nil {
		logger.Error("Failed to load account", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Message: "Internal server error",
			Status:  fiber.StatusInternalServerError,
		})
	}
	if acct == nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrorResponse{
			Message: "Account not found",
			Status:  fiber.StatusNotFound,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile",
		Status:  fiber.StatusOK,
		Data:    acct.ToView(),
	})
}

// Logout handles POST /api/auth/logout by clearing the session cookie.
func (h *Controller) Logout(c *fiber.Ctx) error {
	h.Sessions.Clear(c)

	logger.Success("Logout successful")
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Logout successful",
		Status:  fiber.StatusOK,
	})
}
