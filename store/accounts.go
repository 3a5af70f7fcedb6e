package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"generalstuff/models"
)

var ErrUsernameTaken = errors.New("username already taken")

func (s *Store) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// AccountByUsername loads the account with its profile. Accounts created
// outside sign-up may lack a profile; they get an unsaved empty one.
func (s *Store) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	if account.Profile == nil {
		account.Profile = &models.Profile{AccountID: account.ID}
	}
	return &account, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return count > 0, nil
}

// CreateAccountWithProfile inserts the account and its paired profile
// atomically.
func (s *Store) CreateAccountWithProfile(ctx context.Context, account *models.Account) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := account.Profile
		account.Profile = nil

		if err := tx.Create(account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}

		if profile == nil {
			profile = &models.Profile{}
		}
		profile.AccountID = account.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		account.Profile = profile
		return nil
	})
}

// UpdateAccountAndProfile saves both rows or neither.
func (s *Store) UpdateAccountAndProfile(ctx context.Context, account *models.Account, profile *models.Profile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Save(account).Error; err != nil {
			return err
		}
		profile.AccountID = account.ID
		return tx.Omit("Account").Save(profile).Error
	})
}

func (s *Store) SetStaff(ctx context.Context, username string, staff bool) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Update("is_staff", staff)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDreamTeam adds the member to, or removes them from, the featured team.
func (s *Store) SetDreamTeam(ctx context.Context, username string, member bool) error {
	account, err := s.AccountByUsername(ctx, username)
	if err != nil {
		return err
	}
	account.Profile.DreamTeam = member
	account.Profile.AccountID = account.ID
	if err := s.db.WithContext(ctx).Omit("Account").Save(account.Profile).Error; err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
