// Command admin_seed creates the administrator account that receives
// escalated disputes and prints a bearer token for it.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"stagepay/internal/config"
	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"
	"stagepay/internal/repositories"
	"stagepay/internal/repositories/cache"
	"stagepay/internal/utils"

	"github.com/google/uuid"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminName := config.GetEnv("ADMIN_NAME", "Administrator")
	if adminEmail == "" {
		log.Fatal("ADMIN_EMAIL must be set in environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := repositories.InitDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
	}()

	ctx := context.Background()
	store := repositories.NewStore(db)

	admin, err := store.Users().FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if admin.Role != escrow.RoleAdmin {
			log.Fatalf("User %s exists with role %s", adminEmail, admin.Role)
		}
		log.Println("Admin user already exists")
	case errors.Is(err, apperrors.ErrUserNotFound):
		admin = &models.User{ID: uuid.New(), Name: adminName, Email: adminEmail, Role: escrow.RoleAdmin}
		if err := store.Users().Create(ctx, admin); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("✅ Admin account created successfully!")
		invalidateAdminCache(ctx, cfg.Redis)
	default:
		log.Fatalf("Failed to look up admin user: %v", err)
	}

	ttl := config.GetDurationEnv("ADMIN_TOKEN_TTL", 24*time.Hour)
	token, err := utils.GenerateToken(cfg.JWTSecret, &models.UserClaims{UserID: admin.ID, Email: admin.Email, Role: escrow.RoleAdmin}, ttl)
	if err != nil {
		log.Fatalf("Failed to sign admin token: %v", err)
	}
	log.Printf("Admin %s (%s) token, valid for %s:\n%s", admin.Email, admin.ID, ttl, token)
}

// invalidateAdminCache drops the cached fan-out list so running servers pick
// up the new administrator.
func invalidateAdminCache(ctx context.Context, cfg config.RedisConfig) {
	if cfg.Host == "" {
		return
	}
	client := cache.NewRedisClient(cfg)
	defer client.Close()
	if err := cache.NewCacheService(client, 0).InvalidateAdminIDs(ctx); err != nil {
		log.Printf("⚠️ Failed to invalidate admin cache: %v", err)
	}
}
