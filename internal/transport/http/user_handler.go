package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kekec/storefront/internal/domain"
	"github.com/kekec/storefront/internal/service"
	"github.com/kekec/storefront/internal/util"
)

type UserHandler struct {
	accounts *service.AccountService
	resets   *service.PasswordResetService
}

type ProfileResponse struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Photo *string   `json:"photo,omitempty"`
	Phone *string   `json:"phone,omitempty"`
	Bio   *string   `json:"bio,omitempty"`
}

type AuthResponse struct {
	ProfileResponse
	Token string `json:"token"`
}

func newProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Photo: user.Photo,
		Phone: user.Phone,
		Bio:   user.Bio,
	}
}

func RegisterUsers(e *echo.Echo, accounts *service.AccountService, resets *service.PasswordResetService) {
	handler := &UserHandler{accounts: accounts, resets: resets}

	users := e.Group("/api/users")
	users.POST("/register", handler.register)
	users.POST("/login", handler.login)
	users.GET("/logout", handler.logout)
	users.GET("/loggedin", handler.loggedIn)
	users.POST("/forgotpassword", handler.forgotPassword)
	users.PUT("/resetpassword/:resetToken", handler.resetPassword)

	protected := users.Group("", RequireAuth(accounts))
	protected.GET("/getuser", handler.getUser)
	protected.PATCH("/updateuser", handler.updateUser)
	protected.PATCH("/changepassword", handler.changePassword)
}

func (h *UserHandler) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.accounts.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not register user"))
		}
	}

	setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusCreated, AuthResponse{
		ProfileResponse: newProfileResponse(result.User),
		Token:           result.Token,
	})
}

func (h *UserHandler) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, util.Error("user not found, please sign up"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not log in"))
		}
	}

	setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusOK, AuthResponse{
		ProfileResponse: newProfileResponse(result.User),
		Token:           result.Token,
	})
}

func (h *UserHandler) logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, util.Message("Successfully logged out."))
}

// loggedIn answers with a bare boolean and never an error status; an
// absent or invalid cookie is simply false.
func (h *UserHandler) loggedIn(c echo.Context) error {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, false)
	}
	return c.JSON(http.StatusOK, h.accounts.IsLoggedIn(cookie.Value))
}

func (h *UserHandler) getUser(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
	}

	profile, err := h.accounts.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, util.Error("user not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load profile"))
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

func (h *UserHandler) updateUser(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
	}

	// Email is deliberately absent from the accepted fields; it cannot be
	// changed through this endpoint.
	var req struct {
		Name  *string `json:"name"`
		Photo *string `json:"photo"`
		Phone *string `json:"phone"`
		Bio   *string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	updated, err := h.accounts.UpdateProfile(c.Request().Context(), user.ID, service.ProfileUpdate{
		Name:  req.Name,
		Photo: req.Photo,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("user not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not update profile"))
	}
	return c.JSON(http.StatusOK, newProfileResponse(updated))
}

func (h *UserHandler) changePassword(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authenticated, please login"))
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	err := h.accounts.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error("passwords do not match"))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, util.Error("user not found, please login or sign up"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not change password"))
		}
	}
	return c.String(http.StatusOK, "Password changed successfully")
}

func (h *UserHandler) forgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.resets.Request(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("user does not exist"))
		case errors.Is(err, service.ErrEmailSend):
			return c.JSON(http.StatusInternalServerError, util.Error("email not sent, please try again"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not process request"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"success": true,
		"message": "Reset email sent",
	})
}

func (h *UserHandler) resetPassword(c echo.Context) error {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	err := h.resets.Reset(c.Request().Context(), c.Param("resetToken"), req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrInvalidResetToken):
			return c.JSON(http.StatusNotFound, util.Error("invalid or expired token"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("Password reset successfully, please log in."))
}
