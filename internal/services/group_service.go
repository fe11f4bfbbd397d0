package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/vytor/flashdrill/internal/errors"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
)

// GroupService handles group-related business logic
type GroupService interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	RenameGroup(ctx context.Context, id int64, name string) (*models.Group, error)
	// DeleteGroup removes the group and its cards. Deleting the last group
	// recreates the default group.
	DeleteGroup(ctx context.Context, id int64) error
	// EnsureDefaultGroup creates the default group when no group exists.
	EnsureDefaultGroup(ctx context.Context) error
}

type groupService struct {
	groupRepo    repository.GroupRepository
	defaultGroup string
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository, defaultGroup string) GroupService {
	return &groupService{groupRepo: groupRepo, defaultGroup: defaultGroup}
}

func (s *groupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing groups")

	if err := s.EnsureDefaultGroup(ctx); err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		log.Error("failed to list groups: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return groups, nil
}

func (s *groupService) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	g, err := s.groupRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("group", id)
		}
		logger.FromContext(ctx).Error("failed to get group: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return g, nil
}

func (s *groupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	log := logger.FromContext(ctx)
	name = strings.TrimSpace(name)
	log.Debug("creating group: name=%s", name)

	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	id, err := s.groupRepo.Insert(ctx, name)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicateName) {
			return nil, errors.NewConflictError("group already exists")
		}
		log.Error("failed to create group: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetGroup(ctx, id)
}

func (s *groupService) RenameGroup(ctx context.Context, id int64, name string) (*models.Group, error) {
	log := logger.FromContext(ctx)
	name = strings.TrimSpace(name)
	log.Debug("renaming group: id=%d, name=%s", id, name)

	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	current, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Name == name {
		return current, nil
	}
	if err := s.checkNameFree(ctx, name); err != nil {
		return nil, err
	}

	if err := s.groupRepo.Rename(ctx, id, name); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrDuplicateName):
			return nil, errors.NewConflictError("group already exists")
		case stderrors.Is(err, sql.ErrNoRows):
			return nil, errors.NewNotFoundError("group", id)
		}
		log.Error("failed to rename group: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetGroup(ctx, id)
}

func (s *groupService) DeleteGroup(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Info("deleting group: id=%d", id)

	if err := s.groupRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("group", id)
		}
		log.Error("failed to delete group: %v", err)
		return errors.NewInternalError(err)
	}
	return s.EnsureDefaultGroup(ctx)
}

func (s *groupService) EnsureDefaultGroup(ctx context.Context) error {
	log := logger.FromContext(ctx)

	n, err := s.groupRepo.Count(ctx)
	if err != nil {
		log.Error("failed to count groups: %v", err)
		return errors.NewInternalError(err)
	}
	if n > 0 {
		return nil
	}

	log.Info("no groups left, creating default group: %s", s.defaultGroup)
	if _, err := s.groupRepo.Insert(ctx, s.defaultGroup); err != nil && !stderrors.Is(err, repository.ErrDuplicateName) {
		log.Error("failed to create default group: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *groupService) checkNameFree(ctx context.Context, name string) error {
	existing, err := s.groupRepo.GetByName(ctx, name)
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up group name: %v", err)
		return errors.NewInternalError(err)
	}
	if existing != nil {
		return errors.NewConflictError("group already exists")
	}
	return nil
}
