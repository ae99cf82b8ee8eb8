package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/gl11tchy/test-project-2/app/models"
	"github.com/gl11tchy/test-project-2/internal/pkg/env"
)

// OAuthController handles the GitHub and Google login flows. Users are
// matched by email address, so a provider login can attach to an account
// that was originally created with email/password.
type OAuthController struct {
	db *gorm.DB
}

func NewOAuthController(db *gorm.DB) *OAuthController {
	return &OAuthController{db: db}
}

// HandleBeginAuth redirects the browser to the provider's consent screen.
func (ctl *OAuthController) HandleBeginAuth(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleAuthCallback completes the provider handshake, finds or creates
// the local user and establishes a session, then redirects to the app.
func (ctl *OAuthController) HandleAuthCallback(c *fiber.Ctx) error {
	gothUser, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Printf("oauth: provider handshake failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication failed"})
	}

	user, err := ctl.findOrCreateUser(gothUser)
	if err != nil {
		log.Printf("oauth: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Authentication failed"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is disabled"})
	}

	if err := createUserSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session could not be created"})
	}

	ctl.db.Model(user).Update("last_login_at", time.Now())

	return c.Redirect(env.GetEnv("APP_URL", "http://localhost:3000"), fiber.StatusFound)
}

func (ctl *OAuthController) findOrCreateUser(gothUser goth.User) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		return nil, fmt.Errorf("provider %s returned no email", gothUser.Provider)
	}

	var user models.User
	err := ctl.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := gothUser.Name
	if name == "" {
		name = gothUser.NickName
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	// OAuth accounts never log in with a password; store an unguessable one
	// so the record satisfies the same constraints as email signups.
	created, err := models.CreateUser(name, email, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if gothUser.AvatarURL != "" {
		created.Image = gothUser.AvatarURL
	}

	if err := ctl.db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}
