package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/wwb.blog/internal/auth"
)

const serverErrorKey = "Server error"

// clientMessages holds the text shown to callers for each client error.
var clientMessages = []struct {
	err error
	msg string
}{
	{auth.ErrMissingFields, "Please enter all fields"},
	{auth.ErrNameTooShort, "Fullname must be at least 3 characters"},
	{auth.ErrInvalidEmail, "Please enter a valid email"},
	{auth.ErrWeakPassword, "Password must be 6 to 20 characters which contain at least one numeric digit, one uppercase and one lowercase letter"},
	{auth.ErrEmailExists, "Email already exists"},
	{auth.ErrUserNotFound, "Email not found"},
	{auth.ErrIncorrectPassword, "Incorrect password"},
	{auth.ErrTooManyAttempts, "Too many failed sign-in attempts, please try again later"},
}

type Handler struct {
	authService *auth.Service
	logger      *zap.Logger
}

func NewHandler(authService *auth.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{authService: authService, logger: logger}
}

func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/signup", h.handleSignup)
	router.POST("/signin", h.handleSignin)
}

type signupRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, auth.ErrMissingFields, "failed to register user")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err, "failed to register user")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *Handler) handleSignin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, auth.ErrMissingFields, "failed to sign in")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err, "failed to sign in")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func newAuthResponse(result *auth.AuthResult) gin.H {
	return gin.H{
		"accessToken": result.Token,
		"profile_img": result.User.ProfileImage,
		"fullname":    result.User.FullName,
		"username":    result.User.Username,
	}
}

// writeError answers client errors with 403 and their message. Everything
// else is a server fault: logged, then answered with a generic 500.
func (h *Handler) writeError(c *gin.Context, err error, fault string) {
	if auth.IsClientError(err) {
		status := http.StatusForbidden
		if errors.Is(err, auth.ErrTooManyAttempts) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"msg": clientMessage(err)})
		return
	}

	h.logger.Error(fault,
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)

	if errors.Is(err, auth.ErrHashingFailure) {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{serverErrorKey: fault})
}

func clientMessage(err error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}
