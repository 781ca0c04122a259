package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/annazecevic/catalog-service/dto"
	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/middleware"
	"github.com/annazecevic/catalog-service/service"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   service.UserService
	jwtSecret     string
	sessionTTL    time.Duration
	secureCookies bool
}

func NewUserHandler(userService service.UserService, jwtSecret string, sessionTTL time.Duration, secureCookies bool) *UserHandler {
	return &UserHandler{
		userService:   userService,
		jwtSecret:     jwtSecret,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/users")
	g.GET("/register", h.RegisterForm)
	g.POST("/register", h.Register)
	g.GET("/login", h.LoginForm)
	g.POST("/login", h.Login)
	g.GET("/logout", h.Logout)
	g.POST("/logout", h.Logout)
	g.GET("/:id", h.Get)
}

func (h *UserHandler) RegisterForm(c *gin.Context) {
	present(c, Result{Title: "Register", Data: gin.H{"title": "Register"}})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		present(c, Result{
			Status: http.StatusUnprocessableEntity,
			Title:  "Register",
			Data:   gin.H{"title": "Register", "username": req.Username, "errors": verrs},
		})
		return
	case errors.Is(err, service.ErrUsernameTaken):
		logger.Warn(logger.EventGeneral, "Registration refused, username taken", logger.Fields("ip", c.ClientIP()))
		present(c, Result{
			Status: http.StatusConflict,
			Title:  "Register",
			Data: gin.H{
				"title":    "Register",
				"username": req.Username,
				"errors":   validation.Errors{{Field: "username", Message: err.Error()}},
			},
		})
		return
	case err != nil:
		fail(c, "user", err)
		return
	}

	logger.Info(logger.EventGeneral, "New user registered", logger.Fields(
		"user_id", user.ID,
		"ip", c.ClientIP(),
	))
	present(c, Result{Status: http.StatusCreated, Data: gin.H{"user": user}, Redirect: "/users/login"})
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	present(c, Result{Title: "Log In", Data: gin.H{"title": "Log In"}})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Security(logger.EventLoginFailure, "Login failed", logger.Fields(
			"username", req.Username,
			"ip", c.ClientIP(),
		))
		present(c, Result{
			Status: http.StatusUnauthorized,
			Title:  "Log In",
			Data: gin.H{
				"title":   "Log In",
				"success": false,
				"errors":  validation.Errors{{Field: "username", Message: err.Error()}},
			},
		})
		return
	}
	if err != nil {
		fail(c, "user", err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Username, h.sessionTTL)
	if err != nil {
		logger.Error(logger.EventGeneral, "Failed to sign session token", logger.Fields(
			"user_id", user.ID,
			"error", err.Error(),
		))
		fail(c, "user", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", h.secureCookies, true)

	logger.Security(logger.EventLoginSuccess, "User logged in", logger.Fields(
		"user_id", user.ID,
		"ip", c.ClientIP(),
	))
	present(c, Result{
		Data: gin.H{"success": true, "token": token, "user": dto.UserResponse{
			ID:          user.ID,
			Username:    user.Username,
			DateCreated: user.DateCreated.Unix(),
		}},
		Redirect: "/catalog",
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	present(c, Result{Data: gin.H{"success": true}, Redirect: "/catalog"})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "user", err)
		return
	}
	present(c, Result{Title: "User " + user.Username, Data: gin.H{"user": user}})
}
