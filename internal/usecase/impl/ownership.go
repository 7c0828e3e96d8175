package impl

import (
	"context"
	"fmt"

	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
)

// guardMutation denies a write on content or an account the requester neither owns nor administers.
func guardMutation(requester service.Identity, owner string) error {
	if service.CanMutate(requester, owner) == service.Allowed {
		return nil
	}

	return domainerrors.ErrUnauthorizedMutation.WithDetails(
		fmt.Sprintf("The user: %s may not modify resources of %s", requester.Username, owner))
}

func requireAdmin(requester service.Identity) error {
	if requester.IsAdmin() {
		return nil
	}

	return domainerrors.ErrForbidden.WithDetails("The Admin role is required")
}

// canonicalUsername resolves a case-insensitive username to the stored spelling,
// which is what content rows reference.
func canonicalUsername(ctx context.Context, accountRepo repository.AccountRepository, username string) (string, error) {
	account, err := accountRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return "", domainerrors.ErrIntegrity.WithDetails(fmt.Sprintf("The user: %s does not exist", username))
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve username")
	}

	return account.Username, nil
}

// staleWriteError maps a lost optimistic race: NotFound when the row is gone, a conflict otherwise.
func staleWriteError(ctx context.Context, id int64, exists func(context.Context, int64) (bool, error), notFound error) error {
	found, err := exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "failed to resolve stale write")
	}
	if !found {
		return notFound
	}

	return errors.Wrap(domainerrors.ErrConcurrentUpdate, "row changed since it was read")
}
