package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/repository"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/db"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/util"
)

// Seeds the back-office admin account from ADMIN_EMAIL / ADMIN_PASSWORD /
// ADMIN_NAME and optionally imports a product catalog from an XLSX file:
//
//	go run cmd/seed/main.go [catalog.xlsx]
//
// Expected columns: Name, Description, Price, UnitPrice, Unit, Quantity, Category
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	seedAdmin()

	if len(os.Args) > 1 {
		seedCatalogFromXLSX(os.Args[1])
	}
}

func seedAdmin() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Store Admin"
	}

	if email == "" || password == "" {
		fmt.Println("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	adminRepo := repository.NewAdminRepository(db.GetDB())

	if existing, err := adminRepo.FindByEmail(email); err == nil && existing != nil {
		fmt.Printf("Admin %s already exists, skipping\n", email)
		return
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
	}
	if err := adminRepo.Create(admin); err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	fmt.Printf("Admin account created: %s\n", email)
}

func seedCatalogFromXLSX(filePath string) {
	fmt.Printf("Reading XLSX file: %s\n", filePath)

	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			fmt.Printf("Skipping %q: %v\n", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Printf("Import completed: %d of %d products\n", imported, len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 7 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" || seen[name] {
			skipped++
			continue
		}
		seen[name] = true

		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		unitPrice, _ := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		quantity, _ := strconv.Atoi(strings.TrimSpace(row[5]))

		products = append(products, model.Product{
			Name:        name,
			Description: strings.TrimSpace(row[1]),
			Price:       price,
			UnitPrice:   unitPrice,
			Unit:        strings.TrimSpace(row[4]),
			Quantity:    quantity,
			Available:   quantity > 0,
			Category:    strings.TrimSpace(row[6]),
		})
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d invalid or duplicate rows\n", skipped)
	}

	return products, nil
}
