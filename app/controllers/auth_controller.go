package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gl11tchy/test-project-2/app/models"
	"github.com/gl11tchy/test-project-2/internal/pkg/env"
	"github.com/gl11tchy/test-project-2/internal/pkg/hcaptcha"
	"github.com/gl11tchy/test-project-2/internal/pkg/mail"
	"github.com/gl11tchy/test-project-2/internal/pkg/session"
	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
	"github.com/gl11tchy/test-project-2/internal/pkg/utils"
)

// AuthController handles email/password authentication and the password
// reset flow. Constructed once at startup with its dependencies.
type AuthController struct {
	db *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}

func (ctl *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if hcaptcha.Enabled() {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); !ok {
			log.Printf("register: captcha rejected: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Captcha verification failed"})
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := ctl.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Registration failed"})
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid name, email or password"})
	}
	user.Image = utils.GetGravatarURL(email, 200)

	if err := ctl.db.Create(user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Registration failed"})
	}

	if err := createUserSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session could not be created"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ctl *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// Uniform message for every failure mode; no detail leakage.
	invalid := func() error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := ctl.db.Where("email = ?", email).First(&user).Error; err != nil {
		return invalid()
	}
	if !user.CheckPassword(req.Password) || !user.IsActive() {
		return invalid()
	}

	if err := createUserSession(c, &user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session could not be created"})
	}

	ctl.db.Model(&user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{"user": user})
}

func (ctl *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"ok": true})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (ctl *AuthController) HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// Always answer ok so the endpoint cannot be used to probe for accounts.
	ok := c.JSON(fiber.Map{"ok": true})

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := ctl.db.Where("email = ?", email).First(&user).Error; err != nil {
		return ok
	}
	if err := user.GenerateResetToken(); err != nil {
		return ok
	}
	if err := ctl.db.Save(&user).Error; err != nil {
		return ok
	}

	appURL := strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:3000"), "/")
	link := fmt.Sprintf("%s/reset-password?token=%s", appURL, user.ResetToken)
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password.</p>`, link)
	_ = mail.SendMail(user.Email, "Reset your password - Test Project 2", body)

	return ok
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (ctl *AuthController) HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	var user models.User
	if err := ctl.db.Where("reset_token = ?", strings.TrimSpace(req.Token)).First(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired reset token"})
	}
	if !user.ResetTokenValid(req.Token, time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired reset token"})
	}

	if err := user.SetPassword(req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Password reset failed"})
	}
	user.ResetToken = ""
	user.ResetTokenSentAt = nil
	if err := ctl.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Password reset failed"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// createUserSession writes the logged-in user into the request's session.
func createUserSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUserName, user.Name)
	sess.Set(usercontext.KeyEmail, user.Email)
	return sess.Save()
}
