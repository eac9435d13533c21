package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"grouporder/logger"
	"grouporder/middleware"
	"grouporder/models"
	"grouporder/store"
)

const tokenLifetime = 24 * time.Hour

type AuthController struct {
	users   store.UserStore
	secret  []byte
	timeout time.Duration
	log     *logger.Logger
}

func NewAuthController(users store.UserStore, secret []byte, timeout time.Duration, log *logger.Logger) *AuthController {
	return &AuthController{users: users, secret: secret, timeout: timeout, log: log}
}

func (a *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid", "Invalid input")
		return
	}

	ctx, cancel := requestContext(c, a.timeout)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	_, err := a.users.FindUserByEmail(ctx, email)
	if err == nil {
		respondError(c, http.StatusConflict, "conflict", "Email already registered")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		respondAppError(c, a.log, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		respondAppError(c, a.log, err)
		return
	}

	role := input.Role
	if role != models.RoleOrganizer {
		role = models.RoleCustomer
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := a.users.InsertUser(ctx, &user); err != nil {
		respondAppError(c, a.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid", "Invalid input")
		return
	}

	ctx, cancel := requestContext(c, a.timeout)
	defer cancel()

	user, err := a.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
			return
		}
		respondAppError(c, a.log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"exp":    time.Now().Add(tokenLifetime).Unix(),
	})

	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		respondAppError(c, a.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID.Hex(),
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"token": tokenString,
		},
	})
}

func (a *AuthController) Logout(c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		respondError(c, http.StatusBadRequest, "invalid", "Token required")
		return
	}

	claims, ok := middleware.ParseToken(a.secret, tokenString)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
		return
	}

	var exp int64
	if v, ok := claims["exp"].(float64); ok {
		exp = int64(v)
	}

	ctx, cancel := requestContext(c, a.timeout)
	defer cancel()

	if err := a.users.BlacklistToken(ctx, tokenString, exp); err != nil {
		a.log.Warn("blacklist token failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal", "Failed to blacklist token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
