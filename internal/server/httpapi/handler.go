package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Error: msg})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "email and password are required")
	}

	user, token, err := s.accounts.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return errorJSON(c, http.StatusBadRequest, "invalid email or password format")
		case errors.Is(err, common.ErrorAlreadyExists):
			return errorJSON(c, http.StatusBadRequest, "an account with this email already exists")
		default:
			s.logger.Error(c.Context(), "registration failed", "error", err.Error())
			return errorJSON(c, http.StatusInternalServerError, "internal server error")
		}
	}

	s.logger.Info(c.Context(), "user registered", "user_id", user.ID)
	return c.Status(http.StatusCreated).JSON(authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	})
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}

	user, token, err := s.accounts.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return errorJSON(c, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, common.ErrorInvalidCredentials):
			// Unknown email and wrong password produce this exact same
			// response; nothing here may hint which one happened.
			return errorJSON(c, http.StatusUnauthorized, "invalid email or password")
		default:
			s.logger.Error(c.Context(), "login failed", "error", err.Error())
			return errorJSON(c, http.StatusInternalServerError, "internal server error")
		}
	}

	return c.Status(http.StatusOK).JSON(authResponse{
		Token: token,
		User:  userResponse{ID: user.ID, Email: user.Email},
	})
}

type vaultResponse struct {
	EncryptedData *string `json:"encryptedData"`
	Version       int64   `json:"version"`
}

func (s *HTTPServer) getVault(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)

	encryptedData, version, err := s.vaults.GetVault(c.Context(), userID)
	if err != nil {
		s.logger.Error(c.Context(), "vault fetch failed", "error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, "internal server error")
	}

	return c.Status(http.StatusOK).JSON(vaultResponse{
		EncryptedData: encryptedData,
		Version:       version,
	})
}

type saveVaultRequest struct {
	// Pointer so a stored empty string stays distinct from a missing field.
	EncryptedData *string `json:"encryptedData"`
	Version       int64   `json:"version"`
}

type saveVaultResponse struct {
	Version int64 `json:"version"`
}

func (s *HTTPServer) saveVault(c *fiber.Ctx) error {
	var req saveVaultRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.EncryptedData == nil {
		return errorJSON(c, http.StatusBadRequest, "encrypted data is required")
	}
	if req.Version == 0 {
		req.Version = 1
	}

	userID := c.Locals(localUserID).(string)

	newVersion, err := s.vaults.SaveVault(c.Context(), userID, *req.EncryptedData, req.Version)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return errorJSON(c, http.StatusBadRequest, "invalid vault version")
		case errors.Is(err, common.ErrVersionConflict):
			return errorJSON(c, http.StatusConflict, "vault was modified elsewhere; reload and try again")
		default:
			s.logger.Error(c.Context(), "vault save failed", "error", err.Error())
			return errorJSON(c, http.StatusInternalServerError, "internal server error")
		}
	}

	return c.Status(http.StatusOK).JSON(saveVaultResponse{Version: newVersion})
}

type settingsResponse struct {
	Theme    string `json:"theme"`
	AutoLock int    `json:"autoLock"`
}

func (s *HTTPServer) getSettings(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)

	settings, err := s.settings.GetSettings(c.Context(), userID)
	if err != nil {
		s.logger.Error(c.Context(), "settings fetch failed", "error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, "internal server error")
	}

	return c.Status(http.StatusOK).JSON(settingsResponse{
		Theme:    settings.Theme,
		AutoLock: settings.AutoLock,
	})
}

type healthStatsResponse struct {
	Users  int64 `json:"users"`
	Vaults int64 `json:"vaults"`
}

type healthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Stats    *healthStatsResponse `json:"stats,omitempty"`
}

func (s *HTTPServer) healthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), time.Second)
	defer cancel()

	stats, err := s.health.Check(ctx)
	if err != nil {
		s.logger.Error(c.Context(), "health check failed", "error", err.Error())
		return c.Status(http.StatusInternalServerError).JSON(healthResponse{
			Status:   "Error",
			Database: "Disconnected",
		})
	}

	return c.Status(http.StatusOK).JSON(healthResponse{
		Status:   "OK",
		Database: "Connected",
		Stats:    &healthStatsResponse{Users: stats.Users, Vaults: stats.Vaults},
	})
}
