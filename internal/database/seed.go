package database

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed makes a fresh database usable: it tops the auditoriums up to the
// minimum and creates the admin account when credentials are given. It is
// safe to run more than once.
func Seed(db *gorm.DB, opts SeedOptions) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Auditorium{}).Count(&count).Error; err != nil {
			return err
		}
		for i := 1; count < domain.MinAuditoriums; i++ {
			name := fmt.Sprintf("Auditorium %d", i)
			var exists int64
			if err := tx.Model(&model.Auditorium{}).Where("name = ?", name).Count(&exists).Error; err != nil {
				return err
			}
			if exists > 0 {
				continue
			}
			auditorium := model.Auditorium{
				Name:               name,
				Type:               "standard",
				Capacity:           20,
				HandicapAccessible: i%2 == 0,
			}
			if err := tx.Create(&auditorium).Error; err != nil {
				return err
			}
			count++
		}

		if opts.AdminEmail == "" || opts.AdminPassword == "" {
			return nil
		}
		var admin model.User
		err := tx.Where("email = ?", opts.AdminEmail).First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hashed, err := auth.HashPassword(opts.AdminPassword)
		if err != nil {
			return err
		}
		return tx.Create(&model.User{
			Name:           "Administrator",
			Email:          opts.AdminEmail,
			HashedPassword: hashed,
			Role:           model.RoleAdmin,
			Balance:        decimal.Zero,
		}).Error
	})
}
