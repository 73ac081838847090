package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/middleware"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/crud"
	"github.com/dulanjanabandara/job-recommender-system/internal/usecase/user"
	appErrors "github.com/dulanjanabandara/job-recommender-system/pkg/errors"
	"github.com/dulanjanabandara/job-recommender-system/pkg/utils"
)

type UserHandler struct {
	service *user.Service
	admin   *Factory[domainUser.User]
}

func NewUserHandler(service *user.Service, admin *crud.Service[domainUser.User]) *UserHandler {
	return &UserHandler{
		service: service,
		admin:   NewFactory(admin),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.PATCH("/resetPassword/:token", h.ResetPassword)
	}

	protected := users.Group("", middleware.AuthMiddleware(h.service))
	{
		protected.GET("/me", h.GetMe)
		protected.PATCH("/updateMyPassword", h.UpdatePassword)
		protected.PATCH("/updateMe", h.UpdateMe)
		protected.DELETE("/deleteMe", h.DeleteMe)
	}

	admin := protected.Group("", middleware.AdminOnly())
	{
		admin.GET("", h.admin.GetAll)
		admin.GET("/:id", h.admin.GetOne)
		admin.PATCH("/:id", h.admin.UpdateOne)
		admin.DELETE("/:id", h.admin.DeleteOne)
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.TokenResponse(c, http.StatusCreated, result.Token, user.ToUserResponse(result.User))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, user.ToUserResponse(result.User))
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req, baseURL(c)); err != nil {
		_ = c.Error(err)
		return
	}

	utils.MessageResponse(c, http.StatusOK, "Token sent to email!")
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, user.ToUserResponse(result.User))
}

func (h *UserHandler) GetMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(appErrors.Unauthorized("You are not logged in! Please log in to get access."))
		return
	}

	found, err := h.service.GetMe(c.Request.Context(), current.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, user.ToUserResponse(found))
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req user.UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.UpdatePassword(c.Request.Context(), c.GetString(middleware.UserIDKey), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, result.Token, user.ToUserResponse(result.User))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req user.UpdateMeRequest
	if err := bind(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.service.UpdateMe(c.Request.Context(), c.GetString(middleware.UserIDKey), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, user.ToUserResponse(updated))
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.service.DeleteMe(c.Request.Context(), c.GetString(middleware.UserIDKey)); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// baseURL rebuilds the externally visible origin of the request for links
// sent by email.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
