package usecase

import (
	"context"
	"time"

	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	"market/internal/domain/repository"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to open an account.
type RegisterInput struct {
	Email             string                   `validate:"required,email,max=255"`
	Password          string                   `validate:"required,min=3,max=72"`
	FullName          string                   `validate:"required,max=255"`
	Phone             *string                  `validate:"omitempty,max=20"`
	Role              entity.Role              `validate:"required"`
	CustomerCategory  *entity.CustomerCategory `validate:"omitempty"`
	SellerType        *entity.SellerType       `validate:"omitempty"`
	DeliveryAddresses []string                 `validate:"omitempty,dive,required,max=500"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// UpdateAccountInput is a partial update; nil fields are left unchanged.
// Role and IsActive may only be changed by holders of user:write.
type UpdateAccountInput struct {
	Email             *string                  `validate:"omitempty,email,max=255"`
	Password          *string                  `validate:"omitempty,min=3,max=72"`
	FullName          *string                  `validate:"omitempty,min=1,max=255"`
	Phone             *string                  `validate:"omitempty,max=20"`
	CustomerCategory  *entity.CustomerCategory `validate:"omitempty"`
	SellerType        *entity.SellerType       `validate:"omitempty"`
	DeliveryAddresses []string                 `validate:"omitempty,dive,required,max=500"`
	Role              *entity.Role             `validate:"omitempty"`
	AdminRole         *entity.AdminRole        `validate:"omitempty"`
	IsActive          *bool
}

// --- Output DTOs ---

// AuthPayload is the uniform result of registration and login. Expected
// failures (duplicate email, wrong credentials, invalid input) are reported
// with Success false and a Code instead of an error.
type AuthPayload struct {
	Success   bool
	Code      string
	Message   string
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// AccountUsecase defines account registration, authentication and management.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthPayload, error)
	Login(ctx context.Context, input *LoginInput) (*AuthPayload, error)

	// Logout revokes the credential the caller is using.
	Logout(ctx context.Context) (bool, error)

	// Authenticate resolves a bearer token into the caller's principal.
	Authenticate(ctx context.Context, token string) (deliverycontext.Principal, error)

	Me(ctx context.Context) (*entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, page repository.Page) (*PageResult[entity.User], error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateAccountInput) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
