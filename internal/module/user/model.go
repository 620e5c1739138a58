package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus represents the lifecycle status of an account.
type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusDeleted UserStatus = "deleted"
)

// OAuth provider names accepted by the login endpoints.
const (
	ProviderKakao = "kakao"
	ProviderNaver = "naver"
)

// User represents an account. Accounts are created either with an email
// and password or through an OAuth provider, in which case PasswordHash
// is nil and Provider/OAuthID identify the external account.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Nickname        string     `gorm:"not null" json:"nickname"`
	Provider        *string    `gorm:"index" json:"provider,omitempty"`
	OAuthID         *string    `gorm:"index" json:"-"`
	PasswordHash    *string    `gorm:"column:password_hash" json:"-"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Status          UserStatus `gorm:"not null;default:'active'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsOAuthUser reports whether the account was created through an OAuth
// provider and has no usable password.
func (u *User) IsOAuthUser() bool {
	return u.Provider != nil
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.Status == StatusActive
}
