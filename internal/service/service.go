package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sainath9392/tinylink/internal/database"
	"github.com/sainath9392/tinylink/internal/models"
)

var (
	// ErrOriginalURLRequired is returned when a link is created without a destination.
	ErrOriginalURLRequired = errors.New("original url is required")
	// ErrInvalidShortCode is returned when a custom short code is not 6-8
	// alphanumeric characters or is reserved.
	ErrInvalidShortCode = errors.New("invalid short code: must be 6-8 alphanumeric characters")
	// ErrMaxRetriesExceeded is returned when no free short code could be generated.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
)

const maxGenerateRetries = 5

// LinkRepository defines the storage operations the service relies on.
type LinkRepository interface {
	// Create inserts a new link with no clicks.
	// Returns database.ErrShortCodeExists if the short code is taken.
	Create(ctx context.Context, shortCode, originalURL, ownerID string) (*models.Link, error)

	// GetByShortCode retrieves a link without changing it.
	// Returns database.ErrLinkNotFound if there is none.
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)

	// ListByOwner retrieves the owner's links, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error)

	// Delete removes a link by its short code.
	// Returns database.ErrLinkNotFound if there is none.
	Delete(ctx context.Context, shortCode string) error
}

// ClickDispatcher hands a click off for asynchronous persistence.
type ClickDispatcher interface {
	Record(shortCode string, clickedAt time.Time) bool
}

// CreateLinkParams holds the input of LinkService.CreateLink.
type CreateLinkParams struct {
	OriginalURL string
	// ShortCode is the optional custom code. A code is generated when empty.
	ShortCode string
	// OwnerID defaults to models.AnonymousOwner when empty.
	OwnerID string
}

// LinkService implements link management and short code resolution.
type LinkService struct {
	repo   LinkRepository
	clicks ClickDispatcher
	now    func() time.Time
}

// NewLinkService creates a new instance of LinkService.
func NewLinkService(repo LinkRepository, clicks ClickDispatcher) *LinkService {
	return &LinkService{
		repo:   repo,
		clicks: clicks,
		now:    time.Now,
	}
}

// CreateLink stores a new link under a custom or generated short code.
// A taken custom code fails with database.ErrShortCodeExists. A generated
// code that collides is regenerated, one character longer each time.
func (s *LinkService) CreateLink(ctx context.Context, params CreateLinkParams) (*models.Link, error) {
	const op = "service.LinkService.CreateLink"

	if params.OriginalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrOriginalURLRequired)
	}

	ownerID := ownerOrAnonymous(params.OwnerID)

	if params.ShortCode != "" {
		if !IsValidShortCode(params.ShortCode) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidShortCode)
		}

		link, err := s.repo.Create(ctx, params.ShortCode, params.OriginalURL, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		return link, nil
	}

	for i := 0; i < maxGenerateRetries; i++ {
		shortCode, err := generateShortCode(generatedLength(i))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		if !IsValidShortCode(shortCode) {
			continue
		}

		link, err := s.repo.Create(ctx, shortCode, params.OriginalURL, ownerID)
		if err != nil {
			if errors.Is(err, database.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ListLinks returns the owner's links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, ownerID string) ([]*models.Link, error) {
	const op = "service.LinkService.ListLinks"

	links, err := s.repo.ListByOwner(ctx, ownerOrAnonymous(ownerID))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return links, nil
}

// GetLink returns the link for shortCode without counting a click.
func (s *LinkService) GetLink(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "service.LinkService.GetLink"

	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	return link, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, shortCode string) error {
	const op = "service.LinkService.DeleteLink"

	if err := s.repo.Delete(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	return nil
}

// ResolveShortCode returns the link for shortCode and dispatches a click for
// it. The click is written later; the returned link does not include it.
func (s *LinkService) ResolveShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	const op = "service.LinkService.ResolveShortCode"

	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	s.clicks.Record(link.ShortCode, s.now())

	return link, nil
}

func ownerOrAnonymous(ownerID string) string {
	if ownerID == "" {
		return models.AnonymousOwner
	}
	return ownerID
}
