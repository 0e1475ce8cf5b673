package database

import (
	"github.com/thereayou/warbler/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

func (d *Database) GetUser(id string) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByUsername(username string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, optionally filtered by a username
// substring.
func (d *Database) ListUsers(search string) ([]models.User, error) {
	var users []models.User
	query := d.db.Order("username ASC")
	if search != "" {
		query = query.Where("username LIKE ?", "%"+search+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user together with their messages, follow
// edges in both directions, their likes, and likes pointing at their
// messages.
func (d *Database) DeleteUser(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}

		var messageIDs []string
		if err := tx.Model(&models.Message{}).
			Where("user_id = ?", id).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}

		if len(messageIDs) > 0 {
			if err := tx.Delete(&models.Like{}, "message_id IN ?", messageIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Like{}, "user_id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Follow{}, "follower_id = ? OR followed_id = ?", id, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Message{}, "user_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}
