package services

import (
	"errors"
	"strings"

	"github.com/thereayou/warbler/internal/database"
	"github.com/thereayou/warbler/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService owns password hashing and user creation.
type AuthService struct {
	db *database.Database
}

func NewAuthService(db *database.Database) *AuthService {
	return &AuthService{db: db}
}

// Signup hashes the password and creates the user record. Duplicate
// username or email is reported as a distinguishable sentinel error.
func (s *AuthService) Signup(username, email, password, imageURL string) (*models.User, error) {
	if _, err := s.db.FindUserByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.db.FindUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		ImageURL:     imageURL,
	}

	if err := s.db.SaveUser(user); err != nil {
		if dup := duplicateSignupError(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}

	return user, nil
}

// duplicateSignupError maps a unique index conflict raised at insert
// time onto the matching sentinel. The pre-insert lookups miss a
// concurrent signup, so the constraint gets the last word.
func duplicateSignupError(err error) error {
	if !database.IsUniqueViolation(err) {
		return nil
	}
	if strings.Contains(err.Error(), "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Authenticate verifies the username/password pair. Unknown username
// and wrong password both return ErrInvalidCredentials so callers
// cannot tell them apart.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.db.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
