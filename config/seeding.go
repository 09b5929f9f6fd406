package config

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
	"slf.org.pk/echdata/utils"
)

// SeedAdminAccount creates the administrator credential row on first boot.
// The password matches the default issued to workers and should be rotated
// through the change-password endpoint after deployment.
func SeedAdminAccount(db *gorm.DB) {
	var admin models.AdminAccount
	err := db.Where("email = ?", utils.AdminEmail()).First(&admin).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking admin account: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(utils.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin = models.AdminAccount{
		Email:        utils.AdminEmail(),
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin account: %v", err)
		return
	}
	log.Println("Seeded administrator account")
}
