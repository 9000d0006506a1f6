package main

import (
	"fmt"
	"log"

	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/models"
)

// Seeds the lookup tables and one demo company/beneficiary so a local
// instance can accept its first TPA batch.
func main() {
	fmt.Println("🌱 Claims Pipeline Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.Company{},
		&models.Beneficiary{},
		&models.Dependent{},
		&models.PolicyCard{},
		&models.ClaimType{},
		&models.ClaimStatus{},
		&models.DocumentType{},
		&models.Claim{},
		&models.ClaimEvent{},
		&models.ClaimDocument{},
		&models.IngestBatch{},
		&models.DocumentAccessLog{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	for _, ct := range []models.ClaimType{
		{Code: "CASHLESS", Label: "Cashless Hospitalization"},
		{Code: "REIMB", Label: "Reimbursement"},
		{Code: "DAYCARE", Label: "Day Care Procedure"},
	} {
		db.Where(models.ClaimType{Code: ct.Code}).FirstOrCreate(&ct)
	}

	for _, cs := range []models.ClaimStatus{
		{Code: "RECEIVED", Label: "Received"},
		{Code: "UNDER_REVIEW", Label: "Under Review"},
		{Code: "APPROVED", Label: "Approved"},
		{Code: "REJECTED", Label: "Rejected"},
		{Code: "SETTLED", Label: "Settled"},
	} {
		db.Where(models.ClaimStatus{Code: cs.Code}).FirstOrCreate(&cs)
	}

	for _, dt := range []models.DocumentType{
		{Code: "DISCHARGE", Label: "Discharge Summary"},
		{Code: "BILL", Label: "Hospital Bill"},
		{Code: "PRESCRIPTION", Label: "Prescription"},
		{Code: "ID_PROOF", Label: "Identity Proof"},
	} {
		db.Where(models.DocumentType{Code: dt.Code}).FirstOrCreate(&dt)
	}

	company := models.Company{Code: "ACME", Name: "Acme Industries"}
	db.Where(models.Company{Code: company.Code}).FirstOrCreate(&company)

	beneficiary := models.Beneficiary{
		CompanyID:       &company.ID,
		ReferenceNumber: "DEMO-0001",
		FullName:        "Demo Beneficiary",
		Email:           "demo@example.com",
	}
	db.Where(models.Beneficiary{ReferenceNumber: beneficiary.ReferenceNumber}).FirstOrCreate(&beneficiary)

	fmt.Printf("✅ Seeded company %q and beneficiary %q\n", company.Code, beneficiary.ReferenceNumber)
	fmt.Println("🎉 Done")
}
