package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/store"  // Record store
	"finance_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`         // Login email, must be unique
	Password string  `json:"password" binding:"required,min=6"`      // Plain password, hashed before storage
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"` // Optional display name
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain password
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID    uint    `json:"id"`    // User ID
	Email string  `json:"email"` // User email
	Name  *string `json:"name"`  // Display name, null when unset
}

// Response struct for authentication
type AuthResponse struct {
	Message string `json:"message"` // Outcome
	Token   string `json:"token"`   // JWT token
}

// normalizeEmail lowercases email so uniqueness ignores case
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterHandler creates a user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if issues, _ := bindJSON(c, &req); len(issues) > 0 {
			respondError(c, issues.Err(), "register")
			return
		}
		email := normalizeEmail(req.Email)
		// Hash the password and create the user
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			respondError(c, err, "hash password")
			return
		}
		user, err := store.CreateUser(c.Request.Context(), db, email, hash, trimmed(req.Name))
		if err != nil {
			if apperr.Is(err, apperr.Conflict) {
				logrus.WithField("email", email).Warn("Registration failed: email already exists")
			}
			respondError(c, err, "register")
			return
		}
		logrus.WithField("user_id", user.ID).Info("New user registered")
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully",
			"user":    UserResponse{ID: user.ID, Email: user.Email, Name: user.Name},
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token. Unknown email
// and wrong password produce the same response.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if issues, _ := bindJSON(c, &req); len(issues) > 0 {
			respondError(c, issues.Err(), "login")
			return
		}
		email := normalizeEmail(req.Email)
		invalid := apperr.New(apperr.Unauthenticated, "Invalid credentials")
		user, err := store.FindUserByEmail(c.Request.Context(), db, email)
		if err != nil {
			respondError(c, err, "login")
			return
		}
		if user == nil {
			logrus.WithField("email", email).Warn("Login failed: email not found")
			respondError(c, invalid, "login")
			return
		}
		// Compare provided password with stored hash
		if !utils.CheckPassword(user.PasswordHash, req.Password) {
			logrus.WithField("user_id", user.ID).Warn("Login failed: incorrect password")
			respondError(c, invalid, "login")
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			respondError(c, err, "generate token")
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		c.JSON(http.StatusOK, AuthResponse{Message: "Login successful", Token: token})
	}
}
