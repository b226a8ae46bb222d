package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	store       repository.Store
	users       usecase.Service[entity.User]
	hasher      service.PasswordHasher
	dummyHash   func() string
	tokens      service.TokenService
	mail        *mailDispatcher
	serviceName string
	now         func() time.Time
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	Store        repository.Store
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Mailer       service.Mailer
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	// Unknown emails are checked against this hash so they cost as much as a wrong password.
	dummyHash := sync.OnceValue(func() string {
		hash, err := params.Hasher.Hash(uuid.NewString())
		if err != nil {
			params.Logger.Error("Failed to prepare login hash", slog.Any("error", err))
		}

		return hash
	})

	return &accountService{
		store:       params.Store,
		users:       NewService(params.Store, "user", usersOf, params.Config.Pagination, params.Logger, Hooks[entity.User]{}),
		hasher:      params.Hasher,
		dummyHash:   dummyHash,
		tokens:      params.TokenService,
		mail:        &mailDispatcher{mailer: params.Mailer, logger: params.Logger},
		serviceName: params.Config.Env.ServiceName,
		now:         time.Now,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// authFailure turns an expected failure into the typed payload.
func authFailure(err error) *usecase.AuthPayload {
	info := domainerrors.Info(err)
	message := info.Message
	if details, ok := info.Details.(string); ok && details != "" {
		message += ": " + details
	}

	return &usecase.AuthPayload{Code: info.Code, Message: message}
}

// isExpectedAuthFailure lists the outcomes reported in AuthPayload rather than as errors.
func isExpectedAuthFailure(err error) bool {
	return errors.Is(err, domainerrors.ErrDuplicateResource) ||
		errors.Is(err, domainerrors.ErrValidation) ||
		errors.Is(err, domainerrors.ErrInvalidCredentials)
}

func checkRegistration(input *usecase.RegisterInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	switch input.Role {
	case entity.RoleCustomer, entity.RoleSeller:
	case entity.RoleAdmin:
		return invalid("administrator accounts cannot be self-registered")
	default:
		return invalid("unknown role %q", input.Role)
	}
	if input.CustomerCategory != nil && !input.CustomerCategory.IsValid() {
		return invalid("unknown customer category %q", *input.CustomerCategory)
	}
	if input.SellerType != nil && !input.SellerType.IsValid() {
		return invalid("unknown seller type %q", *input.SellerType)
	}

	return nil
}

// Register creates the account and its first credential in one transaction.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthPayload, error) {
	if input == nil {
		return authFailure(invalid("input is required")), nil
	}
	if err := checkRegistration(input); err != nil {
		return authFailure(err), nil
	}

	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email), slog.String("role", string(input.Role)))

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user := &entity.User{
		Email:             email,
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(input.FullName),
		Phone:             input.Phone,
		Role:              input.Role,
		CustomerCategory:  input.CustomerCategory,
		SellerType:        input.SellerType,
		DeliveryAddresses: input.DeliveryAddresses,
		IsActive:          true,
	}

	var payload *usecase.AuthPayload
	err = srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		existing, err := tx.Users().FilterBy(ctx, repository.Fields{"email": email})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domainerrors.ErrDuplicateResource.WithDetails("email already registered")
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		payload, err = srv.issueToken(ctx, tx, user)

		return err
	})
	if err != nil {
		if isExpectedAuthFailure(err) {
			srv.log(ctx).Info("Registration rejected", slog.String("email", email), slog.Any("error", err))

			return authFailure(err), nil
		}
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to register account")
	}

	if msg, err := welcomeMessage(srv.serviceName, user); err != nil {
		srv.log(ctx).Warn("Failed to render welcome email", slog.Any("error", err))
	} else {
		srv.mail.send(ctx, msg, nil)
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	return payload, nil
}

// Login never reveals whether the email exists or the account is inactive.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthPayload, error) {
	if input == nil {
		return authFailure(invalid("input is required")), nil
	}
	if err := validateInput(input); err != nil {
		return authFailure(err), nil
	}

	email := normalizeEmail(input.Email)
	users, err := srv.users.FilterBy(ctx, repository.Fields{"email": email})
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up account")
	}

	hash := srv.dummyHash()
	if len(users) > 0 {
		hash = users[0].PasswordHash
	}
	matched := srv.hasher.Check(input.Password, hash)
	if len(users) == 0 || !matched || !users[0].IsActive {
		srv.log(ctx).Info("Login rejected", slog.String("email", email))

		return authFailure(domainerrors.ErrInvalidCredentials), nil
	}
	user := users[0]

	var payload *usecase.AuthPayload
	err = srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		payload, err = srv.issueToken(ctx, tx, user)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to issue access token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to log in")
	}

	return payload, nil
}

// issueToken signs a new access token and records its hash so it can be revoked.
func (srv *accountService) issueToken(ctx context.Context, tx repository.Store, user *entity.User) (*usecase.AuthPayload, error) {
	token, expiresAt, err := srv.tokens.GenerateAccessToken(user.ID, string(user.Role), user.Permissions().ToStrings())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	record := &entity.Token{
		TokenHash: srv.tokens.HashToken(token),
		UserID:    user.ID,
		IsActive:  true,
		ExpiresAt: expiresAt,
	}
	if err := tx.Tokens().Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store token")
	}

	return &usecase.AuthPayload{
		Success:   true,
		Code:      "OK",
		Message:   "Authenticated",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (srv *accountService) Logout(ctx context.Context) (bool, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	if _, err := principal.RequireAuthenticated(); err != nil {
		return false, err
	}

	records, err := srv.store.Tokens().FilterBy(ctx, repository.Fields{"token_hash": principal.TokenHash()})
	if err != nil {
		return false, errors.Wrap(err, "failed to look up token")
	}
	if len(records) == 0 || !records[0].IsActive {
		return false, nil
	}

	if _, err := srv.store.Tokens().Update(ctx, records[0].ID, repository.Fields{"is_active": false}); err != nil {
		return false, errors.Wrap(err, "failed to revoke token")
	}

	srv.log(ctx).Info("Token revoked", slog.Any("userID", records[0].UserID))

	return true, nil
}

// Authenticate accepts a token only when its signature is valid, its record
// is active and unexpired, and its account is still active. Role and
// permissions are taken from the account, not the token.
func (srv *accountService) Authenticate(ctx context.Context, token string) (deliverycontext.Principal, error) {
	claims, err := srv.tokens.ValidateToken(token)
	if err != nil {
		return deliverycontext.Principal{}, domainerrors.ErrAuthenticationRequired.WrapMessage(err.Error())
	}

	hash := srv.tokens.HashToken(token)
	records, err := srv.store.Tokens().FilterBy(ctx, repository.Fields{"token_hash": hash})
	if err != nil {
		return deliverycontext.Principal{}, errors.Wrap(err, "failed to look up token")
	}
	if len(records) == 0 || !records[0].IsUsable(srv.now()) || records[0].UserID != claims.UserID {
		return deliverycontext.Principal{}, domainerrors.ErrAuthenticationRequired.WithDetails("token revoked or expired")
	}

	user, err := srv.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return deliverycontext.Principal{}, err
	}
	if user == nil || !user.IsActive {
		return deliverycontext.Principal{}, domainerrors.ErrAuthenticationRequired.WithDetails("account unavailable")
	}

	return deliverycontext.NewPrincipal(user.ID, user.Role, user.Permissions(), hash), nil
}

func (srv *accountService) Me(ctx context.Context) (*entity.User, error) {
	userID, err := deliverycontext.PrincipalFromContext(ctx).RequireAuthenticated()
	if err != nil {
		return nil, err
	}

	user, err := srv.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrAuthenticationRequired.WithDetails("account no longer exists")
	}

	return user, nil
}

// Get is allowed for the account itself and holders of user:read.
func (srv *accountService) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	callerID, err := principal.RequireAuthenticated()
	if err != nil {
		return nil, err
	}
	if callerID != id && !principal.HasPermission(entity.PermissionUserRead) {
		return nil, domainerrors.ErrAuthorizationDenied
	}

	return srv.users.GetByID(ctx, id)
}

func (srv *accountService) List(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.User], error) {
	if _, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionUserRead); err != nil {
		return nil, err
	}

	return srv.users.List(ctx, page)
}

// Update lets an account edit its own profile. Role, admin role and active
// flag, and any other account, need user:write.
func (srv *accountService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateAccountInput) (*entity.User, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	callerID, err := principal.RequireAuthenticated()
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}

	privileged := input.Role != nil || input.AdminRole != nil || input.IsActive != nil
	if (callerID != id || privileged) && !principal.HasPermission(entity.PermissionUserWrite) {
		return nil, domainerrors.ErrAuthorizationDenied
	}

	fields, err := srv.accountFields(input)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	user, err := srv.users.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Account updated", slog.Any("userID", id), slog.Int("fields", len(fields)))

	return user, nil
}

func (srv *accountService) accountFields(input *usecase.UpdateAccountInput) (repository.Fields, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if input.Email != nil {
		fields["email"] = normalizeEmail(*input.Email)
	}
	if input.Password != nil {
		hash, err := srv.hasher.Hash(*input.Password)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		fields["password_hash"] = hash
	}
	if input.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		fields["phone"] = input.Phone
	}
	if input.CustomerCategory != nil {
		if !input.CustomerCategory.IsValid() {
			return nil, invalid("unknown customer category %q", *input.CustomerCategory)
		}
		fields["customer_category"] = input.CustomerCategory
	}
	if input.SellerType != nil {
		if !input.SellerType.IsValid() {
			return nil, invalid("unknown seller type %q", *input.SellerType)
		}
		fields["seller_type"] = input.SellerType
	}
	if input.DeliveryAddresses != nil {
		fields["delivery_addresses"] = input.DeliveryAddresses
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, invalid("unknown role %q", *input.Role)
		}
		fields["role"] = *input.Role
	}
	if input.AdminRole != nil {
		if !input.AdminRole.IsValid() {
			return nil, invalid("unknown admin role %q", *input.AdminRole)
		}
		fields["admin_role"] = input.AdminRole
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	return fields, nil
}

// Delete removes an account. Only holders of user:write may do it.
func (srv *accountService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionUserWrite); err != nil {
		return false, err
	}

	deleted, err := srv.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	srv.log(ctx).Info("Account deleted", slog.Any("userID", id), slog.Bool("deleted", deleted))

	return deleted, nil
}
