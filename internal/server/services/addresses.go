package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/addresses"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
)

// AddressInput carries the editable address fields.
type AddressInput struct {
	Label      string
	Recipient  string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

func (in AddressInput) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"recipient", in.Recipient},
		{"line1", in.Line1},
		{"city", in.City},
		{"country", in.Country},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return common.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (in AddressInput) apply(a *models.Address) {
	a.Label = in.Label
	a.Recipient = in.Recipient
	a.Phone = in.Phone
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.City = in.City
	a.State = in.State
	a.PostalCode = in.PostalCode
	a.Country = in.Country
	a.IsDefault = in.IsDefault
}

// AddressService manages address books. Every mutation runs in one
// transaction that first locks the owning user, so a user never has more
// than one default address.
type AddressService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
}

func NewAddressService(runner dbx.Runner, m repomanager.RepositoryManager) *AddressService {
	return &AddressService{runner: runner, repomanager: m}
}

// List returns the default address first, then newest first.
func (s *AddressService) List(ctx context.Context, userID int64) ([]*models.Address, error) {
	list, err := s.repomanager.Addresses(s.runner.Conn()).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing addresses: %w", err)
	}
	return list, nil
}

func (s *AddressService) Create(ctx context.Context, userID int64, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *models.Address
	err := s.inOwnerTx(ctx, userID, func(ctx context.Context, repo addresses.Repository) error {
		if in.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		a := &models.Address{UserID: userID}
		in.apply(a)

		var err error
		out, err = repo.Create(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating address: %w", err)
	}
	return out, nil
}

// Update overwrites every field of the address. Addresses of other users are
// reported as common.ErrorNotFound.
func (s *AddressService) Update(ctx context.Context, userID, addressID int64, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *models.Address
	err := s.inOwnerTx(ctx, userID, func(ctx context.Context, repo addresses.Repository) error {
		a, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if in.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		in.apply(a)

		out, err = repo.Update(ctx, a)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error updating address: %w", err)
	}
	return out, nil
}

// Delete removes the address. When it was the default, the most recently
// created remaining address becomes the default.
func (s *AddressService) Delete(ctx context.Context, userID, addressID int64) error {
	err := s.inOwnerTx(ctx, userID, func(ctx context.Context, repo addresses.Repository) error {
		a, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, a.ID); err != nil {
			return err
		}
		if a.IsDefault {
			if _, err := repo.PromoteLatest(ctx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting address: %w", err)
	}
	return nil
}

// SetDefault makes the address the user's only default. Repeating the call
// is a no-op.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID int64) (*models.Address, error) {
	var out *models.Address
	err := s.inOwnerTx(ctx, userID, func(ctx context.Context, repo addresses.Repository) error {
		a, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		if err := repo.SetDefault(ctx, a.ID); err != nil {
			return err
		}
		a.IsDefault = true
		out = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error setting default address: %w", err)
	}
	return out, nil
}

func (s *AddressService) inOwnerTx(ctx context.Context, userID int64, fn func(context.Context, addresses.Repository) error) error {
	return s.runner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Addresses(tx)
		if err := repo.LockOwner(ctx, userID); err != nil {
			return err
		}
		return fn(ctx, repo)
	})
}

func ownedAddress(ctx context.Context, repo addresses.Repository, userID, addressID int64) (*models.Address, error) {
	a, err := repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return a, nil
}
