package leads

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrDuplicate     = errors.New("lead with this phone number already exists")
	ErrInvalidLead   = errors.New("invalid lead")
	ErrInvalidAction = errors.New("invalid interaction")
)

type Lead struct {
	ID           string
	Name         string
	Number       string
	InstaID      string
	Source       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Interactions []Interaction
}

type Interaction struct {
	ID              string
	LeadID          string
	Type            string
	Status          string
	ContactedBy     string
	ContactedByName string
	ContactedByRole string
	Notes           string
	FollowUpAt      *time.Time
	CreatedAt       time.Time
}

type Employee struct {
	ID       string
	FullName string
	Role     string
}

type ListFilter struct {
	Source string
	Limit  int
	Offset int
}

type Repository interface {
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, lead Lead) (*Lead, error)
	Exists(ctx context.Context, id string) (bool, error)
	AddInteraction(ctx context.Context, interaction Interaction) (*Interaction, error)
	Touch(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
