package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/utils"
)

const actingUserKey = "acting_user"

// AuthRequired validates the bearer token, loads the account and resolves
// the acting user stored in the request locals. The user row is re-read
// on every request so role or partner changes apply immediately.
func AuthRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token de autenticação em falta",
			})
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token inválido ou expirado",
			})
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Utilizador não encontrado",
			})
		}

		actor := models.ActingUser{
			ID:   user.ID,
			Name: user.Name,
			Role: user.Role,
		}
		switch user.Role {
		case models.RolePartner:
			var partner models.Partner
			if err := db.Where("user_id = ?", user.ID).First(&partner).Error; err == nil {
				actor.PartnerID = partner.ID
			}
		case models.RolePartnerCommercial:
			if user.PartnerID != nil {
				actor.PartnerID = *user.PartnerID
			}
		}

		c.Locals(actingUserKey, actor)
		c.Locals("user", user)
		return c.Next()
	}
}

// ActingUser returns the actor resolved by AuthRequired.
func ActingUser(c *fiber.Ctx) models.ActingUser {
	actor, _ := c.Locals(actingUserKey).(models.ActingUser)
	return actor
}

// RequireRoles rejects requests whose actor has none of the given roles.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *fiber.Ctx) error {
		if !allowed[ActingUser(c).Role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Sem permissão para aceder a este recurso",
			})
		}
		return c.Next()
	}
}

// RequireStaff shortcuts the common admin/back-office restriction.
func RequireStaff() fiber.Handler {
	return RequireRoles(models.RoleAdmin, models.RoleBackOffice)
}
