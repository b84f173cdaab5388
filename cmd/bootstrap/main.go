// Command bootstrap prepares a database for the dispatch service: it applies the schema
// migrations and seeds the default admin. Both steps are idempotent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/adminrepo"
	"dispatch/internal/adapters/out/postgres/migrations"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if configs.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is required to seed the default admin")
	}

	if err := migrations.Up(configs.DSN()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Info("Schema is up to date")

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, created, err := adminrepo.NewGormAdminRepository(gormDB).
		EnsureAdmin(ctx, configs.AdminName, configs.AdminEmail, configs.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if created {
		log.Infof("Created admin %s (%s)", configs.AdminEmail, id)
	} else {
		log.Infof("Admin %s already exists (%s)", configs.AdminEmail, id)
	}

	adminID, err := kernel.UUIDFromGoogle(id)
	if err != nil {
		log.Fatalf("Invalid admin id: %v", err)
	}
	token, err := httpin.NewAuthenticator(configs.JWTSecret).IssueToken(adminID, httpin.RoleAdmin, configs.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to issue admin token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
