package main

import (
	"fmt"
	"time"

	"inkwell/internal/model"
	"inkwell/pkg/config"
	"inkwell/pkg/database"
	"inkwell/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	testUsers := []struct {
		name     string
		email    string
		password string
	}{
		{"Alice Writer", "alice@test.com", "password123"},
		{"Bob Blogger", "bob@test.com", "password123"},
		{"Charlie Author", "charlie@test.com", "password123"},
	}

	userIDs := make([]string, 0, len(testUsers))

	for _, userData := range testUsers {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(userData.password), bcrypt.DefaultCost)

		user := &model.UserModel{
			Name:     userData.name,
			Email:    userData.email,
			Password: string(hashedPassword),
		}

		var existingUser model.UserModel
		result := db.Where("email = ?", user.Email).First(&existingUser)
		if result.Error == nil {
			log.Info("User %s already exists, skipping", user.Email)
			userIDs = append(userIDs, existingUser.ID)
			continue
		}

		if err := db.Create(user).Error; err != nil {
			log.Error("Failed to create user %s: %v", user.Email, err)
			continue
		}

		log.Info("Created user: %s (%s)", user.Name, user.Email)
		userIDs = append(userIDs, user.ID)
	}

	now := time.Now()
	for i, userID := range userIDs {
		posts := []*model.PostModel{
			{
				UserID:      userID,
				Title:       fmt.Sprintf("Published post #%d", i+1),
				Content:     "A post that went live an hour ago.",
				IsDraft:     false,
				PublishedAt: timePtr(now.Add(-time.Hour)),
			},
			{
				UserID:  userID,
				Title:   fmt.Sprintf("Work in progress #%d", i+1),
				Content: "Still being written.",
				IsDraft: true,
			},
			{
				UserID:      userID,
				Title:       fmt.Sprintf("Scheduled post #%d", i+1),
				Content:     "Goes live tomorrow.",
				IsDraft:     false,
				PublishedAt: timePtr(now.Add(24 * time.Hour)),
			},
		}

		for _, post := range posts {
			var existing model.PostModel
			result := db.Where("user_id = ? AND title = ?", post.UserID, post.Title).First(&existing)
			if result.Error == nil {
				continue
			}

			if err := db.Create(post).Error; err != nil {
				log.Error("Failed to create post %q: %v", post.Title, err)
				continue
			}
			log.Info("Created post: %s", post.Title)
		}
	}

	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
