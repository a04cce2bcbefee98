package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/utils"
)

const tokenDuration = 7 * 24 * time.Hour

type AuthHandler struct {
	db      *gorm.DB
	limiter *utils.LoginLimiter
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, limiter: utils.DefaultLoginLimiter}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an account and issues the session token. Failed
// attempts are rate limited per email.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email e password são obrigatórios")
	}

	if locked, minutes := h.limiter.IsLocked(req.Email); locked {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fmt.Sprintf("Conta temporariamente bloqueada. Tente novamente em %d minutos", minutes),
		})
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil || !user.CheckPassword(req.Password) {
		locked, minutes := h.limiter.RecordFailedLogin(req.Email)
		if locked {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fmt.Sprintf("Demasiadas tentativas falhadas. Conta bloqueada por %d minutos", minutes),
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":              "Email ou password incorretos",
			"remaining_attempts": h.limiter.GetRemainingAttempts(req.Email),
		})
	}

	h.limiter.ResetAttempts(req.Email)

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, tokenDuration)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":                token,
		"user":                 user,
		"must_change_password": user.MustChangePassword,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the authenticated account's password and clears
// the first-access flag.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Pedido inválido")
	}

	actor := middleware.ActingUser(c)
	var user models.User
	if err := h.db.First(&user, actor.ID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Utilizador não encontrado"})
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Password atual incorreta"})
	}
	if !utils.ValidatePassword(req.NewPassword) {
		return badRequest(c, "A password deve ter pelo menos 8 caracteres, incluindo uma maiúscula, um número e um caráter especial")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return serviceError(c, err)
	}
	user.MustChangePassword = false
	if err := h.db.Save(&user).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password alterada com sucesso"})
}

// Me returns the authenticated account and its resolved scope.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := middleware.ActingUser(c)
	user, _ := c.Locals("user").(models.User)
	return c.JSON(fiber.Map{
		"user":       user,
		"partner_id": actor.PartnerID,
	})
}
