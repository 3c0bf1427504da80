package models

import (
	"time"

	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var tokenCipher *utils.TokenCipher

// InitEncryption enables at-rest encryption of refresh tokens. Without it
// tokens are stored as given.
func InitEncryption(c *utils.TokenCipher) {
	tokenCipher = c
}

// User is an account linked to a Google identity.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	GoogleID     string    `json:"googleId" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"index;not null"`
	DisplayName  string    `json:"displayName"`
	Avatar       string    `json:"avatar"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	if tokenCipher == nil || u.RefreshToken == "" {
		return nil
	}
	sealed, err := tokenCipher.Encrypt(u.RefreshToken)
	if err != nil {
		return err
	}
	u.RefreshToken = sealed
	return nil
}

// AfterSave restores the plaintext token on the in-memory struct.
func (u *User) AfterSave(tx *gorm.DB) error {
	return u.decryptToken()
}

func (u *User) AfterFind(tx *gorm.DB) error {
	return u.decryptToken()
}

// decryptToken leaves a token that does not decrypt as it is: it was stored
// before encryption was enabled and is sealed on the next save.
func (u *User) decryptToken() error {
	if tokenCipher == nil || u.RefreshToken == "" {
		return nil
	}
	plain, err := tokenCipher.Decrypt(u.RefreshToken)
	if err != nil {
		logrus.WithField("user_id", u.ID).WithError(err).
			Warn("Refresh token is not encrypted, treating it as plaintext")
		return nil
	}
	u.RefreshToken = plain
	return nil
}
