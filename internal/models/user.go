package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SkillTeaching is a skill the user offers to teach.
type SkillTeaching struct {
	Name            string `json:"name" validate:"required"`
	Proficiency     string `json:"proficiency" validate:"required,oneof=beginner intermediate advanced expert"`
	YearsExperience int    `json:"years_experience,omitempty"`
	WillingToTeach  bool   `json:"willing_to_teach"`
}

// SkillLearning is a skill the user wants to pick up.
type SkillLearning struct {
	Name         string `json:"name" validate:"required"`
	CurrentLevel string `json:"current_level,omitempty"`
	Goal         string `json:"goal,omitempty"`
	Urgency      string `json:"urgency,omitempty"`
}

type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
)

type VerificationDocument struct {
	URL         string     `json:"url" validate:"required,url"`
	Type        string     `json:"type" validate:"required"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

type Verification struct {
	Status    string                 `json:"status"`
	Badges    []string               `json:"badges,omitempty"`
	Documents []VerificationDocument `json:"documents,omitempty"`
}

// UserStats is the aggregate written by feedback submissions. Endorsements
// maps a skill name to how many times it was endorsed across sessions.
type UserStats struct {
	TotalSwaps   int            `json:"total_swaps"`
	AvgRating    float64        `json:"avg_rating"`
	TotalHours   float64        `json:"total_hours"`
	Endorsements map[string]int `json:"endorsements"`
}

// If we get more JSON values fields, we can use a Generic
// to avoid copy-paste
func (s UserStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *UserStats) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &s)
}

type User struct {
	ID string `json:"id" gorm:"unique;not null"` // Standard field for the primary key
	// Subject claim of the bearer token. Social logins use "<provider>|<id>",
	// manual accounts get "local|<uuid>".
	AuthID         string `json:"-" gorm:"unique;not null;index"`
	Name           string `gorm:"not null" json:"name" validate:"required"`
	Email          string `gorm:"not null;unique" json:"email" validate:"required,email"`
	Password       string `gorm:"-" json:"password,omitempty" validate:"omitempty,min=8"`
	HashedPassword string `json:"-"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio"`
	Phone          string `json:"phone,omitempty"`

	Location       Location        `gorm:"serializer:json" json:"location"`
	SkillsTeaching []SkillTeaching `gorm:"serializer:json" json:"skills_teaching"`
	SkillsLearning []SkillLearning `gorm:"serializer:json" json:"skills_learning"`
	Verification   Verification    `gorm:"serializer:json" json:"verification"`
	Stats          UserStats       `gorm:"type:json" json:"stats"`

	OnboardingCompleted bool      `gorm:"default:false" json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"` // Automatically managed by GORM for creation time
	UpdatedAt           time.Time `json:"updated_at"` // Automatically managed by GORM for update time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	// Using uuid v7 to be indexable with B-tree
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return err
	}
	u.ID = uuidV7.String()

	if u.AuthID == "" {
		u.AuthID = "local|" + u.ID
	}

	if u.Verification.Status == "" {
		u.Verification.Status = VerificationUnverified
	}
	if u.Stats.Endorsements == nil {
		u.Stats.Endorsements = map[string]int{}
	}

	// Hash password if it's set
	if u.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.HashedPassword = string(hashedPassword)
		// Clear the plain text password
		u.Password = ""
	}

	return
}

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
	return err == nil
}

func GetUserByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	result := db.Where("email = ?", email).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, result.Error
	}
	return &user, nil
}

func GetUserByID(db *gorm.DB, id string) (*User, error) {
	var user User
	result := db.Where("id = ?", id).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, result.Error
	}
	return &user, nil
}

func GetUserByAuthID(db *gorm.DB, authID string) (*User, error) {
	var user User
	result := db.Where("auth_id = ?", authID).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.New("User not found")
		}
		return nil, result.Error
	}
	return &user, nil
}

// TeachesSkill reports whether the user lists the named skill (case
// insensitive) among their teaching skills.
func (u *User) TeachesSkill(name string) bool {
	for _, s := range u.SkillsTeaching {
		if equalFold(s.Name, name) {
			return true
		}
	}
	return false
}

// WantsToLearn reports whether the user lists the named skill among their
// learning goals.
func (u *User) WantsToLearn(name string) bool {
	for _, s := range u.SkillsLearning {
		if equalFold(s.Name, name) {
			return true
		}
	}
	return false
}

// CandidateFilters narrows the match candidate pool.
type CandidateFilters struct {
	SkillQuery   string
	Location     string
	VerifiedOnly bool
}

// GetMatchCandidates returns onboarded users other than excludeID. Skill and
// location filtering happens in memory since both live in JSON columns.
func GetMatchCandidates(db *gorm.DB, excludeID string, filters CandidateFilters, limit int) ([]User, error) {
	var users []User
	if err := db.Where("onboarding_completed = ? AND id != ?", true, excludeID).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	candidates := make([]User, 0, len(users))
	for _, u := range users {
		if filters.SkillQuery != "" && !u.TeachesSkill(filters.SkillQuery) {
			continue
		}
		if filters.Location != "" && !equalFold(u.Location.City, filters.Location) {
			continue
		}
		if filters.VerifiedOnly && u.Verification.Status != VerificationVerified {
			continue
		}
		candidates = append(candidates, u)
		if len(candidates) == limit {
			break
		}
	}
	return candidates, nil
}

// GetLeaderboard returns onboarded users ordered by swap count. Ordering on
// fields inside the stats JSON differs per driver, so sort in memory.
func GetLeaderboard(db *gorm.DB, limit int) ([]User, error) {
	var users []User
	if err := db.Where("onboarding_completed = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Stats.TotalSwaps != users[j].Stats.TotalSwaps {
			return users[i].Stats.TotalSwaps > users[j].Stats.TotalSwaps
		}
		return users[i].Stats.AvgRating > users[j].Stats.AvgRating
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
