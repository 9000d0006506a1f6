package ingest

import (
	"fmt"
	"log"
	"strings"

	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/repository"
)

// resolvedRefs carries the looked-up entities an inbound claim points at
type resolvedRefs struct {
	company     *models.Company
	beneficiary *models.Beneficiary
	dependent   *models.Dependent
	policyCard  *models.PolicyCard
	claimType   *models.ClaimType
	status      *models.ClaimStatus
}

// resolve looks up company, beneficiary, claim type, status, dependent and
// policy card for an inbound claim. Unknown company/type/status codes and an
// unresolved beneficiary are hard failures; dependent and policy card are
// optional and resolve non-fatally.
func (s *Service) resolve(item *models.ClaimItem) (*resolvedRefs, error) {
	refs := repository.NewReferences(s.db.DB)
	out := &resolvedRefs{}

	if code := strings.TrimSpace(item.CompanyCode); code != "" {
		company, err := refs.CompanyByCode(code)
		if err != nil {
			return nil, fmt.Errorf("company lookup failed: %w", err)
		}
		if company == nil {
			return nil, fmt.Errorf("company code %q could not be resolved", code)
		}
		out.company = company
	}

	beneficiary, ident, err := s.resolveBeneficiary(refs, item)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, fmt.Errorf("beneficiary %q could not be resolved", ident)
	}
	out.beneficiary = beneficiary

	if code := strings.TrimSpace(item.ClaimTypeCode); code != "" {
		claimType, err := refs.ClaimTypeByCode(code)
		if err != nil {
			return nil, fmt.Errorf("claim type lookup failed: %w", err)
		}
		if claimType == nil {
			return nil, fmt.Errorf("claim type code %q could not be resolved", code)
		}
		out.claimType = claimType
	}

	if code := strings.TrimSpace(item.StatusCode); code != "" {
		status, err := refs.ClaimStatusByCode(code)
		if err != nil {
			return nil, fmt.Errorf("status lookup failed: %w", err)
		}
		if status == nil {
			return nil, fmt.Errorf("status code %q could not be resolved", code)
		}
		out.status = status
	}

	// Dependent must belong to the resolved beneficiary; absence is non-fatal
	if item.DependentID != 0 {
		dependent, err := refs.DependentOf(beneficiary.ID, item.DependentID)
		if err != nil {
			return nil, fmt.Errorf("dependent lookup failed: %w", err)
		}
		out.dependent = dependent
	}

	// Policy card is created or refreshed as a side effect of ingestion
	if item.PolicyCard != nil {
		if cardNumber := strings.TrimSpace(item.PolicyCard.CardNumber); cardNumber != "" {
			card, err := refs.UpsertPolicyCard(
				beneficiary.ID,
				cardNumber,
				strings.TrimSpace(item.PolicyCard.PolicyNumber),
				models.ParseFlexibleTime(item.PolicyCard.ValidFrom),
				models.ParseFlexibleTime(item.PolicyCard.ValidTo),
			)
			if err != nil {
				log.Printf("⚠️  Claim %q: policy card %q not refreshed: %v", item.Reference, cardNumber, err)
			} else {
				out.policyCard = card
			}
		}
	}

	return out, nil
}

// resolveBeneficiary tries internal id first, then reference number
func (s *Service) resolveBeneficiary(refs *repository.References, item *models.ClaimItem) (*models.Beneficiary, string, error) {
	if item.BeneficiaryID != 0 {
		b, err := refs.BeneficiaryByID(item.BeneficiaryID)
		if err != nil {
			return nil, "", fmt.Errorf("beneficiary lookup failed: %w", err)
		}
		return b, fmt.Sprintf("#%d", item.BeneficiaryID), nil
	}

	ref := strings.TrimSpace(item.BeneficiaryReference)
	if ref == "" {
		return nil, "(none)", nil
	}
	b, err := refs.BeneficiaryByReference(ref)
	if err != nil {
		return nil, "", fmt.Errorf("beneficiary lookup failed: %w", err)
	}
	return b, ref, nil
}
