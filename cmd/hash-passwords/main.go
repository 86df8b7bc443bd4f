// Migration script to bcrypt-hash the plaintext employee passwords.
// Run once, then start the API with AUTH_BCRYPT=true.
package main

import (
	"log"
	"strings"

	"qa-release-api/config"
	"qa-release-api/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config.InitDB()

	var employees []models.Employee
	if err := config.DB.Find(&employees).Error; err != nil {
		log.Fatal("Failed to fetch employees:", err)
	}

	for _, emp := range employees {
		// Skip if already hashed (bcrypt hashes start with $2)
		if strings.HasPrefix(emp.Password, "$2") {
			log.Printf("Employee %d already has hashed password, skipping\n", emp.EmpCode)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(emp.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for employee %d: %v\n", emp.EmpCode, err)
			continue
		}

		if err := config.DB.Model(&emp).Update("password", string(hashed)).Error; err != nil {
			log.Printf("Failed to update password for employee %d: %v\n", emp.EmpCode, err)
			continue
		}

		log.Printf("Updated password for employee %d\n", emp.EmpCode)
	}

	log.Println("Password migration completed")
}
