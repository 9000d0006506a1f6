package repository

import (
	"errors"
	"time"

	"github.com/tpaops/claimsgo/internal/models"
	"gorm.io/gorm"
)

// References resolves the lookup entities an inbound claim points at.
// Lookup methods return (nil, nil) when no row matches.
type References struct {
	db *gorm.DB
}

// NewReferences creates a reference resolver repository
func NewReferences(db *gorm.DB) *References {
	return &References{db: db}
}

func notFoundToNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// CompanyByCode finds a company by its unique code
func (r *References) CompanyByCode(code string) (*models.Company, error) {
	var company models.Company
	err := r.db.Where("code = ?", code).First(&company).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &company, nil
}

// BeneficiaryByID finds a beneficiary by internal id
func (r *References) BeneficiaryByID(id uint) (*models.Beneficiary, error) {
	var b models.Beneficiary
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &b, nil
}

// BeneficiaryByReference finds a beneficiary by reference number
func (r *References) BeneficiaryByReference(ref string) (*models.Beneficiary, error) {
	var b models.Beneficiary
	err := r.db.Where("reference_number = ?", ref).First(&b).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &b, nil
}

// DependentOf finds a dependent only if it belongs to the beneficiary
func (r *References) DependentOf(beneficiaryID, dependentID uint) (*models.Dependent, error) {
	var d models.Dependent
	err := r.db.Where("id = ? AND beneficiary_id = ?", dependentID, beneficiaryID).First(&d).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &d, nil
}

// ClaimTypeByCode finds a claim type by code
func (r *References) ClaimTypeByCode(code string) (*models.ClaimType, error) {
	var ct models.ClaimType
	err := r.db.Where("code = ?", code).First(&ct).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &ct, nil
}

// ClaimStatusByCode finds a claim status by code
func (r *References) ClaimStatusByCode(code string) (*models.ClaimStatus, error) {
	var cs models.ClaimStatus
	err := r.db.Where("code = ?", code).First(&cs).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &cs, nil
}

// DocumentTypeByCode finds a document type by code
func (r *References) DocumentTypeByCode(code string) (*models.DocumentType, error) {
	var dt models.DocumentType
	err := r.db.Where("code = ?", code).First(&dt).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &dt, nil
}

// UpsertPolicyCard creates or refreshes a beneficiary's policy card by card number
func (r *References) UpsertPolicyCard(beneficiaryID uint, cardNumber, policyNumber string, validFrom, validTo *time.Time) (*models.PolicyCard, error) {
	var card models.PolicyCard
	err := r.db.Where("beneficiary_id = ? AND card_number = ?", beneficiaryID, cardNumber).First(&card).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		card = models.PolicyCard{
			BeneficiaryID: beneficiaryID,
			CardNumber:    cardNumber,
			PolicyNumber:  policyNumber,
			ValidFrom:     validFrom,
			ValidTo:       validTo,
		}
		if err := r.db.Create(&card).Error; err != nil {
			return nil, err
		}
		return &card, nil
	}

	card.PolicyNumber = policyNumber
	if validFrom != nil {
		card.ValidFrom = validFrom
	}
	if validTo != nil {
		card.ValidTo = validTo
	}
	if err := r.db.Save(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}
