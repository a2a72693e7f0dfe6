package database

import (
	"time"

	"taskdesk/internal/auth"
	"taskdesk/internal/models"

	"gorm.io/gorm"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	Users int
	Tasks int
}

// Seed fills an empty database with sample users and tasks. It does nothing
// when at least one user already exists.
func Seed(db *gorm.DB) (SeedResult, error) {
	var count int64
	if err := db.Model(&models.UserRecord{}).Count(&count).Error; err != nil {
		return SeedResult{}, err
	}
	if count > 0 {
		return SeedResult{}, nil
	}

	adminHash, err := auth.HashPassword("admin123")
	if err != nil {
		return SeedResult{}, err
	}
	memberHash, err := auth.HashPassword("member123")
	if err != nil {
		return SeedResult{}, err
	}

	users := []models.UserRecord{
		{Email: "admin1@taskdesk.local", Password: adminHash, FirstName: "Admin", LastName: "One", Role: models.RoleAdmin},
		{Email: "member1@taskdesk.local", Password: memberHash, FirstName: "John", LastName: "Smith", Role: models.RoleMember},
		{Email: "member2@taskdesk.local", Password: memberHash, FirstName: "Jane", LastName: "Doe", Role: models.RoleMember},
		{Email: "member3@taskdesk.local", Password: memberHash, FirstName: "Bob", LastName: "Johnson", Role: models.RoleMember},
	}

	var result SeedResult
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		result.Users = len(users)

		due := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
		tasks := []models.TaskRecord{
			{Title: "Prepare sprint board", Status: models.StatusTodo, Priority: models.PriorityHigh, CreatedByID: users[0].ID, AssignedToID: &users[1].ID, DueDate: &due},
			{Title: "Fix login redirect", Description: "Expired sessions should land on the login page", Status: models.StatusInProgress, Priority: models.PriorityUrgent, CreatedByID: users[0].ID, AssignedToID: &users[2].ID},
			{Title: "Write release notes", Status: models.StatusDone, Priority: models.PriorityLow, CreatedByID: users[1].ID},
			{Title: "Review attachment limits", Status: models.StatusTodo, Priority: models.PriorityMedium, CreatedByID: users[2].ID, AssignedToID: &users[3].ID},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return err
		}
		result.Tasks = len(tasks)
		return nil
	})
	return result, err
}
