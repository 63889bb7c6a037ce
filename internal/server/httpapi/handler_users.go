package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type updateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !s.bindJSON(c, &req) {
		return
	}

	user, err := s.services.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "user created", "user": user.Profile()})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !s.bindJSON(c, &req) {
		return
	}

	token, err := s.services.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if err := s.services.Users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset link has been sent to your email"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if err := s.services.Users.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}

func (s *Server) getOwnProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Profile())
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !s.bindJSON(c, &req) {
		return
	}

	p, err := s.services.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getProfile(c *gin.Context) {
	id, err := pathID(c, "userId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	p, err := s.services.Users.GetProfile(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
