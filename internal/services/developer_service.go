package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/isdelr/devlink/internal/database"
	"github.com/isdelr/devlink/internal/models"
)

// TopTechSkills is how many technologies the stats summary reports.
const TopTechSkills = 5

// DeveloperServiceProvider defines the interface for developer record services.
// Every operation is scoped to ownerID.
type DeveloperServiceProvider interface {
	ListDevelopers(ctx context.Context, ownerID string, filter models.DeveloperFilter) ([]models.Developer, error)
	GetDeveloper(ctx context.Context, id, ownerID string) (models.Developer, error)
	CreateDeveloper(ctx context.Context, ownerID string, in models.DeveloperInput) (models.Developer, error)
	UpdateDeveloper(ctx context.Context, id, ownerID string, in models.DeveloperInput) (models.Developer, error)
	DeleteDeveloper(ctx context.Context, id, ownerID string) error
	Stats(ctx context.Context, ownerID string) (models.DeveloperStats, error)
}

// DeveloperService provides business logic for developer records.
type DeveloperService struct {
	store database.DeveloperStore
	now   func() time.Time
}

// NewDeveloperService creates a new DeveloperService.
func NewDeveloperService(store database.DeveloperStore) *DeveloperService {
	return &DeveloperService{store: store, now: time.Now}
}

// ListDevelopers returns the owner's records matching filter.
func (s *DeveloperService) ListDevelopers(ctx context.Context, ownerID string, filter models.DeveloperFilter) ([]models.Developer, error) {
	return s.store.ListDevelopers(ctx, ownerID, filter)
}

// GetDeveloper retrieves one record if it belongs to ownerID.
func (s *DeveloperService) GetDeveloper(ctx context.Context, id, ownerID string) (models.Developer, error) {
	dev, err := s.store.GetDeveloper(ctx, id)
	if err != nil {
		return models.Developer{}, err
	}
	if dev.OwnerID != ownerID {
		return models.Developer{}, models.ErrForbidden
	}
	return dev, nil
}

// CreateDeveloper validates the input and stores a new record owned by ownerID.
func (s *DeveloperService) CreateDeveloper(ctx context.Context, ownerID string, in models.DeveloperInput) (models.Developer, error) {
	in.Normalize()
	if err := validateInput(in); err != nil {
		return models.Developer{}, err
	}

	now := s.timestamp()
	dev := models.Developer{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(&dev)

	if err := s.store.CreateDeveloper(ctx, &dev); err != nil {
		return models.Developer{}, duplicateAsValidation(err)
	}
	return dev, nil
}

// UpdateDeveloper replaces all mutable fields of a record owned by ownerID.
func (s *DeveloperService) UpdateDeveloper(ctx context.Context, id, ownerID string, in models.DeveloperInput) (models.Developer, error) {
	dev, err := s.GetDeveloper(ctx, id, ownerID)
	if err != nil {
		return models.Developer{}, err
	}

	in.Normalize()
	if err := validateInput(in); err != nil {
		return models.Developer{}, err
	}

	in.Apply(&dev)
	dev.UpdatedAt = s.timestamp()

	if err := s.store.UpdateDeveloper(ctx, &dev); err != nil {
		return models.Developer{}, duplicateAsValidation(err)
	}
	return dev, nil
}

// DeleteDeveloper permanently removes a record owned by ownerID.
func (s *DeveloperService) DeleteDeveloper(ctx context.Context, id, ownerID string) error {
	if _, err := s.GetDeveloper(ctx, id, ownerID); err != nil {
		return err
	}
	return s.store.DeleteDeveloper(ctx, id, ownerID)
}

// Stats summarizes every record owned by ownerID.
func (s *DeveloperService) Stats(ctx context.Context, ownerID string) (models.DeveloperStats, error) {
	devs, err := s.store.ListDevelopers(ctx, ownerID, models.DeveloperFilter{})
	if err != nil {
		return models.DeveloperStats{}, err
	}
	return ComputeStats(devs, TopTechSkills), nil
}

func (s *DeveloperService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func duplicateAsValidation(err error) error {
	if errors.Is(err, models.ErrDuplicateEmail) {
		return models.NewValidationError("A developer with this email already exists")
	}
	return err
}
