package main

import (
	"log"
	"os"

	"family-stories-be/internal/model"
	"family-stories-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.PasswordResetToken{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Chapter{},
		&model.Prompt{},
		&model.ProjectPromptState{},
		&model.UserPrompt{},
		&model.Story{},
		&model.Interaction{},
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.NotificationType{},
		&model.Notification{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Seeding notification types...")
	seedSQL := []string{
		`INSERT INTO notification_types (code, display_name, template, target_type)
		 VALUES ('STORY_CREATED', 'New Story', '{title} was just added to your family project', 'PROJECT')
		 ON CONFLICT (code) DO NOTHING;`,
		`INSERT INTO notification_types (code, display_name, template, target_type)
		 VALUES ('MEMBER_INVITED', 'Project Invitation', 'You have been invited to join {project_name}', 'SELF')
		 ON CONFLICT (code) DO NOTHING;`,
		`INSERT INTO notification_types (code, display_name, template, target_type)
		 VALUES ('FOLLOW_UP_QUEUED', 'Follow-up Question', 'A follow-up question was added to one of your stories', 'PROJECT')
		 ON CONFLICT (code) DO NOTHING;`,
		`INSERT INTO notification_types (code, display_name, template, target_type)
		 VALUES ('SUBSCRIPTION_CREATED', 'New Subscription', '{full_name} subscribed to the {plan_slug} plan', 'ADMIN')
		 ON CONFLICT (code) DO NOTHING;`,
	}
	for _, sql := range seedSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to seed notification type: %v", err)
		}
	}

	log.Println("Step 4: Seeding subscription plans...")
	planSQL := []string{
		`INSERT INTO subscription_plans (id, name, slug, description, price, tax_rate, billing_period, max_projects, max_storytellers, created_at)
		 VALUES (gen_random_uuid(), 'Family', 'family-monthly', 'One family project with up to five storytellers', 9.99, 0.0, 'monthly', 1, 5, now())
		 ON CONFLICT (slug) DO NOTHING;`,
		`INSERT INTO subscription_plans (id, name, slug, description, price, tax_rate, billing_period, max_projects, max_storytellers, created_at)
		 VALUES (gen_random_uuid(), 'Extended Family', 'extended-yearly', 'Unlimited projects and storytellers, billed yearly', 99.00, 0.0, 'yearly', 100, 100, now())
		 ON CONFLICT (slug) DO NOTHING;`,
	}
	for _, sql := range planSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to seed plan: %v", err)
		}
	}

	log.Println("Migration complete.")
}
