package lists

import (
	"fmt"

	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/domain/repository"
)

// ListName identifies one of the two override lists.
type ListName string

const (
	// Whitelisted is the always-retain list.
	Whitelisted ListName = "whitelistedIds"

	// Blacklisted is the never-retain list.
	Blacklisted ListName = "blacklistedIds"
)

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ManageListsUseCase maintains the whitelist/blacklist pair through the
// settings store. The combined move operation guarantees an id is never
// left in both lists.
type ManageListsUseCase struct {
	settings repository.SettingsStore
	logger   Logger
}

// NewManageListsUseCase creates a new ManageListsUseCase.
func NewManageListsUseCase(settings repository.SettingsStore, logger Logger) *ManageListsUseCase {
	return &ManageListsUseCase{
		settings: settings,
		logger:   logger,
	}
}

// AddTo appends id to the named list. Duplicate adds are no-ops.
func (uc *ManageListsUseCase) AddTo(name ListName, id string) error {
	return uc.update(name, id, func(target, _ *entity.IDList) {
		target.Add(id)
	})
}

// RemoveFrom removes id from the named list.
func (uc *ManageListsUseCase) RemoveFrom(name ListName, id string) error {
	return uc.update(name, id, func(target, _ *entity.IDList) {
		target.Remove(id)
	})
}

// AddToAndRemoveFromOpposite moves id into the named list, removing it from
// the other one first. After this call the id is in exactly one list.
func (uc *ManageListsUseCase) AddToAndRemoveFromOpposite(name ListName, id string) error {
	return uc.update(name, id, func(target, opposite *entity.IDList) {
		opposite.Remove(id)
		target.Add(id)
	})
}

func (uc *ManageListsUseCase) update(name ListName, id string, mutate func(target, opposite *entity.IDList)) error {
	if id == "" {
		return fmt.Errorf("empty id")
	}

	policy, err := uc.settings.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	var target, opposite *entity.IDList
	switch name {
	case Whitelisted:
		target, opposite = &policy.Whitelist, &policy.Blacklist
	case Blacklisted:
		target, opposite = &policy.Blacklist, &policy.Whitelist
	default:
		return fmt.Errorf("%w: %s", entity.ErrUnknownList, name)
	}

	mutate(target, opposite)

	if err := uc.settings.Save(policy); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	uc.logger.Debug("list updated",
		"list", string(name),
		"id", id,
	)
	return nil
}
