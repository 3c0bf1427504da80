package services

import (
	"context"
	"errors"
	"strings"

	"github.com/krushndayshmookh/krushn-calendar/metrics"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
	"github.com/sirupsen/logrus"
)

const operatorSubjectPrefix = "operator:"

// Profile is the identity returned by the OAuth provider after consent.
type Profile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type IdentityService struct {
	users       repositories.UserRepository
	ownership   repositories.OwnershipRepository
	legacyOwner string
}

// NewIdentityService builds the login path. legacyOwner is the email that
// inherits ownerless records; empty disables the adoption.
func NewIdentityService(users repositories.UserRepository, ownership repositories.OwnershipRepository, legacyOwner string) *IdentityService {
	return &IdentityService{
		users:       users,
		ownership:   ownership,
		legacyOwner: strings.TrimSpace(legacyOwner),
	}
}

// CompleteLogin finds or creates the user for profile and stores the
// refresh token when the provider issued a new one.
func (s *IdentityService) CompleteLogin(ctx context.Context, profile Profile, refreshToken string) (*models.User, error) {
	if profile.Subject == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByGoogleID(ctx, profile.Subject)
	switch {
	case err == nil:
		if refreshToken != "" {
			user.RefreshToken = refreshToken
			if err := s.users.Update(ctx, user); err != nil {
				return nil, storeErr("update user", err)
			}
		}
		metrics.Logins.WithLabelValues("returning").Inc()
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			GoogleID:     profile.Subject,
			Email:        profile.Email,
			DisplayName:  profile.Name,
			Avatar:       profile.Picture,
			RefreshToken: refreshToken,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, storeErr("create user", err)
		}
		metrics.Logins.WithLabelValues("new").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
		}).Info("User created")
	default:
		return nil, storeErr("find user", err)
	}

	if err := s.adoptIfLegacyOwner(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoadUser re-reads the user a session points at.
func (s *IdentityService) LoadUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, storeErr("load user", err)
	}
	return user, nil
}

// EnsureOperator upserts the single user that passphrase-mode requests act
// as, going through the same login path. The operator must end up with a
// refresh token, otherwise no event request could reach the calendar.
func (s *IdentityService) EnsureOperator(ctx context.Context, email, refreshToken string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "operator email is required")
	}
	user, err := s.CompleteLogin(ctx, Profile{
		Subject: operatorSubjectPrefix + strings.ToLower(email),
		Email:   email,
		Name:    email,
	}, refreshToken)
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == "" {
		return nil, ErrOperatorNoCredentials
	}
	return user, nil
}

func (s *IdentityService) adoptIfLegacyOwner(ctx context.Context, user *models.User) error {
	if s.legacyOwner == "" || !strings.EqualFold(user.Email, s.legacyOwner) {
		return nil
	}

	result, err := s.ownership.AdoptOwnerless(ctx, user.ID)
	if err != nil {
		return storeErr("adopt ownerless records", err)
	}
	if result.Categories == 0 && result.Metadata == 0 && result.SkippedMetadata == 0 {
		return nil
	}

	metrics.AdoptedRecords.WithLabelValues("category").Add(float64(result.Categories))
	metrics.AdoptedRecords.WithLabelValues("metadata").Add(float64(result.Metadata))

	entry := logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"categories": result.Categories,
		"metadata":   result.Metadata,
	})
	if result.SkippedMetadata > 0 {
		entry.WithField("skipped", result.SkippedMetadata).
			Warn("Ownerless metadata left unassigned, owner already has records for those events")
		return nil
	}
	entry.Info("Ownerless records assigned to legacy owner")
	return nil
}
