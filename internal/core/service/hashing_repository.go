package service

import (
	"context"
	"fmt"

	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

// hashingIdentityRepository hashes a pending password immediately before the
// record is written. Every identity write in this package goes through it, so
// a plaintext never reaches storage.
type hashingIdentityRepository struct {
	ports.IdentityRepository
	hasher ports.PasswordHasher
}

// NewHashingIdentityRepository wraps repo with hash-on-write. Wrapping an
// already wrapped repository is a no-op.
func NewHashingIdentityRepository(repo ports.IdentityRepository, hasher ports.PasswordHasher) ports.IdentityRepository {
	if h, ok := repo.(*hashingIdentityRepository); ok {
		return h
	}
	return &hashingIdentityRepository{IdentityRepository: repo, hasher: hasher}
}

func (r *hashingIdentityRepository) Create(ctx context.Context, u *domain.User) error {
	if !u.PasswordChanged() && u.PasswordHash == "" {
		return fmt.Errorf("create identity: %w: password is required", domain.ErrInvalidInput)
	}
	if err := r.hashPending(u); err != nil {
		return err
	}
	return r.IdentityRepository.Create(ctx, u)
}

func (r *hashingIdentityRepository) Update(ctx context.Context, u *domain.User) error {
	if err := r.hashPending(u); err != nil {
		return err
	}
	return r.IdentityRepository.Update(ctx, u)
}

func (r *hashingIdentityRepository) hashPending(u *domain.User) error {
	if !u.PasswordChanged() {
		return nil
	}
	if u.PendingPassword() == "" {
		return fmt.Errorf("%w: password must not be empty", domain.ErrInvalidInput)
	}
	hash, err := r.hasher.Hash(u.PendingPassword())
	if err != nil {
		return err
	}
	u.ApplyPasswordHash(hash)
	return nil
}
