package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/domain"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []fieldError
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	errs = append(errs, passwordErrors("password", req.Password)...)
	if req.ConfirmPassword != req.Password {
		errs = append(errs, fieldError{Field: "confirmPassword", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "User with this email already exists")
			return
		}
		h.serverError(c, "registration", err)
		return
	}

	pair, err := h.issuer.IssueTokenPair(user.ID, user.Email)
	if err != nil {
		h.serverError(c, "registration", err)
		return
	}

	data := tokenPairToData(pair)
	data["user"] = userToResponse(user)
	respondOK(c, http.StatusCreated, "User registered successfully", data)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []fieldError
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.serverError(c, "login", err)
		return
	}

	pair, err := h.issuer.IssueTokenPair(user.ID, user.Email)
	if err != nil {
		h.serverError(c, "login", err)
		return
	}

	data := tokenPairToData(pair)
	data["user"] = userToResponse(user)
	respondOK(c, http.StatusOK, "Login successful", data)
}

func (h *Handler) refresh(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	pair, err := h.issuer.IssueTokenPair(user.ID, user.Email)
	if err != nil {
		h.serverError(c, "token refresh", err)
		return
	}
	respondOK(c, http.StatusOK, "Token refreshed successfully", tokenPairToData(pair))
}

func (h *Handler) me(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "profile fetch", err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"user": userToResponse(user)})
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (h *Handler) changePassword(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []fieldError
	if req.CurrentPassword == "" {
		errs = append(errs, fieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	errs = append(errs, passwordErrors("newPassword", req.NewPassword)...)
	if req.ConfirmNewPassword != req.NewPassword {
		errs = append(errs, fieldError{Field: "confirmNewPassword", Message: "Passwords do not match"})
	}
	if len(errs) > 0 {
		respondValidationErrors(c, errs)
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), identity.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Current password is incorrect")
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			h.serverError(c, "password change", err)
		}
		return
	}
	respondOK(c, http.StatusOK, "Password changed successfully", nil)
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) updateEmail(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validEmail(req.Email) {
		respondValidationErrors(c, []fieldError{{Field: "email", Message: "Please provide a valid email address"}})
		return
	}

	user, err := h.users.UpdateEmail(c.Request.Context(), identity.ID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			respondError(c, http.StatusConflict, "User with this email already exists")
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			h.serverError(c, "email update", err)
		}
		return
	}
	respondOK(c, http.StatusOK, "Email updated successfully", gin.H{"user": userToResponse(user)})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c, "Access denied.")
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), identity.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "account deletion", err)
		return
	}
	respondOK(c, http.StatusOK, "Account deleted successfully", nil)
}

func (h *Handler) serverError(c *gin.Context, during string, err error) {
	h.logger.WithError(err).Errorf("%s failed", during)
	respondError(c, http.StatusInternalServerError, "An error occurred during "+during)
}
