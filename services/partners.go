package services

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	emailpkg "github.com/hugoalbmartins/MPGrupo-CRM-sub000/email"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/utils"
)

// PartnerService handles partner onboarding and management. Creating a
// partner also provisions its login account with a generated initial
// password that must be changed on first access.
type PartnerService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewPartnerService(db *gorm.DB, mailer Mailer) *PartnerService {
	return &PartnerService{db: db, mailer: mailer}
}

// CreatePartnerInput is the onboarding payload.
type CreatePartnerInput struct {
	PartnerType         string   `json:"partner_type"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	CommunicationEmails []string `json:"communication_emails"`
	Phone               string   `json:"phone"`
	ContactPerson       string   `json:"contact_person"`
	Street              string   `json:"street"`
	DoorNumber          string   `json:"door_number"`
	PostalCode          string   `json:"postal_code"`
	Locality            string   `json:"locality"`
	NIF                 string   `json:"nif"`
	CRC                 string   `json:"crc"`
}

// Create onboards a partner: assigns the partner code, provisions the
// login account and emails the initial credentials. The welcome email is
// best-effort.
func (s *PartnerService) Create(input CreatePartnerInput) (*models.Partner, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Name == "" {
		return nil, NewValidationError("Nome do parceiro é obrigatório")
	}
	if !models.ValidPartnerType(input.PartnerType) {
		return nil, NewValidationError("Tipo de parceiro inválido")
	}
	if err := validate.Var(input.Email, "required,email"); err != nil {
		return nil, NewValidationError("Email inválido")
	}
	if input.NIF != "" && !utils.ValidateNIF(input.NIF) {
		return nil, NewValidationError("NIF inválido")
	}
	if input.PostalCode != "" && !utils.ValidatePostalCode(input.PostalCode) {
		return nil, NewValidationError("Código postal inválido (formato: 0000-000)")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &DuplicateError{Field: "email", Message: "Email já registado no sistema"}
	}

	partnerCode, err := utils.GeneratePartnerCode(s.db, input.PartnerType)
	if err != nil {
		return nil, err
	}

	initialPassword := utils.GenerateStrongPassword(12)
	user := models.User{
		Name:               input.Name,
		Email:              input.Email,
		Role:               models.RolePartner,
		MustChangePassword: true,
	}
	if err := user.SetPassword(initialPassword); err != nil {
		return nil, err
	}

	partner := models.Partner{
		PartnerCode:         partnerCode,
		PartnerType:         input.PartnerType,
		Name:                input.Name,
		Email:               input.Email,
		CommunicationEmails: input.CommunicationEmails,
		Phone:               input.Phone,
		ContactPerson:       input.ContactPerson,
		Street:              input.Street,
		DoorNumber:          input.DoorNumber,
		PostalCode:          input.PostalCode,
		Locality:            input.Locality,
		NIF:                 input.NIF,
		CRC:                 input.CRC,
		InitialPassword:     initialPassword,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		partner.UserID = &user.ID
		return tx.Create(&partner).Error
	})
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		go func() {
			subject, body := emailpkg.RenderPartnerWelcome(partner.Name, user.Email, initialPassword)
			if _, err := s.mailer.Send(user.Email, subject, body); err != nil {
				log.Printf("partners: welcome email to %s failed: %v", user.Email, err)
			}
		}()
	}

	return &partner, nil
}

// UpdatePartnerInput is a patch: nil pointers leave the field untouched.
// The partner code and type are immutable after onboarding.
type UpdatePartnerInput struct {
	Name                *string   `json:"name"`
	Email               *string   `json:"email"`
	CommunicationEmails *[]string `json:"communication_emails"`
	Phone               *string   `json:"phone"`
	ContactPerson       *string   `json:"contact_person"`
	Street              *string   `json:"street"`
	DoorNumber          *string   `json:"door_number"`
	PostalCode          *string   `json:"postal_code"`
	Locality            *string   `json:"locality"`
	NIF                 *string   `json:"nif"`
	CRC                 *string   `json:"crc"`
}

// Update applies a patch to a partner.
func (s *PartnerService) Update(partnerID uint, input UpdatePartnerInput) (*models.Partner, error) {
	partner, err := s.Get(partnerID)
	if err != nil {
		return nil, err
	}

	if input.NIF != nil && *input.NIF != "" && !utils.ValidateNIF(*input.NIF) {
		return nil, NewValidationError("NIF inválido")
	}
	if input.PostalCode != nil && *input.PostalCode != "" && !utils.ValidatePostalCode(*input.PostalCode) {
		return nil, NewValidationError("Código postal inválido (formato: 0000-000)")
	}

	apply := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	apply(&partner.Name, input.Name)
	apply(&partner.Phone, input.Phone)
	apply(&partner.ContactPerson, input.ContactPerson)
	apply(&partner.Street, input.Street)
	apply(&partner.DoorNumber, input.DoorNumber)
	apply(&partner.PostalCode, input.PostalCode)
	apply(&partner.Locality, input.Locality)
	apply(&partner.NIF, input.NIF)
	apply(&partner.CRC, input.CRC)
	if input.Email != nil {
		partner.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.CommunicationEmails != nil {
		partner.CommunicationEmails = *input.CommunicationEmails
	}

	if err := s.db.Save(partner).Error; err != nil {
		return nil, err
	}
	return partner, nil
}

// Get loads one partner.
func (s *PartnerService) Get(partnerID uint) (*models.Partner, error) {
	var partner models.Partner
	if err := s.db.First(&partner, partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}

// List returns all partners ordered by code.
func (s *PartnerService) List() ([]models.Partner, error) {
	var partners []models.Partner
	err := s.db.Order("partner_code ASC").Find(&partners).Error
	return partners, err
}

// Delete removes a partner. Refused while the partner still has sales.
func (s *PartnerService) Delete(partnerID uint) error {
	partner, err := s.Get(partnerID)
	if err != nil {
		return err
	}

	var saleCount int64
	if err := s.db.Model(&models.Sale{}).Where("partner_id = ?", partnerID).Count(&saleCount).Error; err != nil {
		return err
	}
	if saleCount > 0 {
		return NewValidationError("Não é possível eliminar um parceiro com vendas registadas")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if partner.UserID != nil {
			if err := tx.Delete(&models.User{}, *partner.UserID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("partner_id = ?", partnerID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(partner).Error
	})
}

// CreateCommercial provisions a partner_commercial account under an
// existing partner.
func (s *PartnerService) CreateCommercial(partnerID uint, name, userEmail string) (*models.User, string, error) {
	partner, err := s.Get(partnerID)
	if err != nil {
		return nil, "", err
	}

	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	if name == "" {
		return nil, "", NewValidationError("Nome do comercial é obrigatório")
	}
	if err := validate.Var(userEmail, "required,email"); err != nil {
		return nil, "", NewValidationError("Email inválido")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", userEmail).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", &DuplicateError{Field: "email", Message: "Email já registado no sistema"}
	}

	initialPassword := utils.GenerateStrongPassword(12)
	user := models.User{
		Name:               name,
		Email:              userEmail,
		Role:               models.RolePartnerCommercial,
		PartnerID:          &partner.ID,
		MustChangePassword: true,
	}
	if err := user.SetPassword(initialPassword); err != nil {
		return nil, "", err
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	if s.mailer != nil {
		go func() {
			subject, body := emailpkg.RenderPartnerWelcome(name, userEmail, initialPassword)
			if _, err := s.mailer.Send(userEmail, subject, body); err != nil {
				log.Printf("partners: welcome email to %s failed: %v", userEmail, err)
			}
		}()
	}

	return &user, initialPassword, nil
}
