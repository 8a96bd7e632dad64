package auth

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/config"
	"github.com/whatson/whatson/pkg/venue"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

type Service struct {
	venues venue.Repository
	admin  config.Admin
}

func NewService(venues venue.Repository, admin config.Admin) *Service {
	return &Service{venues: venues, admin: admin}
}

// AuthenticateVenue checks a venue owner's email and password. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords, so the
// response does not reveal which one failed.
func (s *Service) AuthenticateVenue(ctx context.Context, email, password string) (venue.Venue, error) {
	if email == "" || password == "" {
		return venue.Venue{}, ErrInvalidCredentials
	}

	v, err := s.venues.GetByEmail(ctx, email)
	if errors.Is(err, venue.ErrNotFound) {
		return venue.Venue{}, ErrInvalidCredentials
	} else if err != nil {
		return venue.Venue{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(password)) != nil {
		log.Debugf("failed login attempt for venue %s", v.ID)
		return venue.Venue{}, ErrInvalidCredentials
	}
	return v, nil
}

// AuthenticateAdmin checks the platform admin credentials configured at
// startup (email plus bcrypt password hash).
func (s *Service) AuthenticateAdmin(email, password string) error {
	if email == "" || password == "" || email != s.admin.Email {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) != nil {
		log.Debug("failed platform admin login attempt")
		return ErrInvalidCredentials
	}
	return nil
}

// ChangePassword lets a logged-in venue owner replace their own password
// after confirming the current one.
func (s *Service) ChangePassword(ctx context.Context, venueID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.venues.UpdatePassword(ctx, venueID, string(hash))
}
