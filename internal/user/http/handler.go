package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/rental-booking-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
}

func NewHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register creates an account and signs the new user in.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, pair, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		TokenResponse: NewTokenResponse(pair),
		User:          NewUserResponse(u),
	})
}

// Login authenticates a user using username and password.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, pair, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		TokenResponse: NewTokenResponse(pair),
		User:          NewUserResponse(u),
	})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	pair, err := h.userService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTokenResponse(pair))
}

// Logout revokes the caller's access token and, if given, its refresh family.
func (h *UserHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	if err := h.userService.Logout(c.Request.Context(), auth.GetIdentity(c), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Verify only runs behind AuthRequired, so reaching it means the token is valid.
func (h *UserHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, VerifyResponse{Valid: true})
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}
