package models

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a registered account. FollowingIDs is filled in by the user store
// when the user is loaded as the current viewer.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-"` // Store hashed password, ignore for JSON serialization
	Bio         string    `json:"bio"`
	Image       string    `json:"image"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FollowingIDs []uint `json:"-" gorm:"-"`
}

// IsFollowing reports whether u follows other.
func (u *User) IsFollowing(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return slices.Contains(u.FollowingIDs, other.ID)
}

// ViewProfile returns other's public profile as seen by u.
func (u *User) ViewProfile(other *User) Profile {
	return Profile{
		Username:  other.Username,
		Bio:       other.Bio,
		Image:     other.Image,
		Following: u.IsFollowing(other),
	}
}

// Profile is the public, viewer-relative view of a user.
type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
