package impl

import (
	"context"
	"log/slog"
	"strings"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// CatalogParams holds dependencies shared by the catalog services, injected by Fx.
type CatalogParams struct {
	fx.In

	Store  repository.Store
	Config *config.Config
	Logger *slog.Logger

	QRCodes service.QRCodeService `optional:"true"`
}

// --- Categories ---

type categoryService struct {
	categories usecase.Service[entity.Category]
	logger     *slog.Logger
}

// NewCategoryService is the constructor for categoryService.
func NewCategoryService(params CatalogParams) usecase.CategoryUsecase {
	srv := &categoryService{logger: params.Logger}
	srv.categories = NewService(params.Store, "category", categoriesOf, params.Config.Pagination, params.Logger, Hooks[entity.Category]{
		BeforeCreate: func(ctx context.Context, tx repository.Store, c *entity.Category) error {
			if c.ParentCategoryID == nil {
				return nil
			}

			return checkCategoryParent(ctx, tx, uuid.Nil, *c.ParentCategoryID)
		},
		BeforeUpdate: func(ctx context.Context, tx repository.Store, id uuid.UUID, fields repository.Fields) error {
			parent, ok := fields["parent_category_id"].(*uuid.UUID)
			if !ok || parent == nil {
				return nil
			}

			return checkCategoryParent(ctx, tx, id, *parent)
		},
	})

	return srv
}

func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// checkCategoryParent requires parentID to exist and, when id is set, not to
// be id itself or one of its descendants.
func checkCategoryParent(ctx context.Context, tx repository.Store, id, parentID uuid.UUID) error {
	visited := make(map[uuid.UUID]struct{})
	for current := &parentID; current != nil; {
		if *current == id {
			return invalid("category %s cannot be its own ancestor", id)
		}
		if _, seen := visited[*current]; seen {
			return invalid("category tree already contains a cycle at %s", *current)
		}
		visited[*current] = struct{}{}

		parent, err := tx.Categories().FindByID(ctx, *current)
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("parent category %s does not exist", *current)
		}
		if err != nil {
			return err
		}
		current = parent.ParentCategoryID
	}

	return nil
}

func (srv *categoryService) Create(ctx context.Context, input *usecase.CreateCategoryInput) (*entity.Category, error) {
	callerID, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionCategoryWrite)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		ParentCategoryID: input.ParentCategoryID,
		IsActive:         true,
		CreatedBy:        callerID,
	}
	if err := srv.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Category created", slog.Any("categoryID", category.ID))

	return category, nil
}

func (srv *categoryService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateCategoryInput) (*entity.Category, error) {
	if _, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionCategoryWrite); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = input.Description
	}
	switch {
	case input.ClearParent:
		fields["parent_category_id"] = nil
	case input.ParentCategoryID != nil:
		fields["parent_category_id"] = input.ParentCategoryID
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	return srv.categories.Update(ctx, id, fields)
}

func (srv *categoryService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionCategoryWrite); err != nil {
		return false, err
	}

	return srv.categories.Delete(ctx, id)
}

func (srv *categoryService) Get(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return srv.categories.GetByID(ctx, id)
}

func (srv *categoryService) ListActive(ctx context.Context) ([]*entity.Category, error) {
	return srv.categories.FilterBy(ctx, repository.Fields{"is_active": true})
}

// --- Businesses ---

type businessService struct {
	businesses usecase.Service[entity.Business]
	qrcodes    service.QRCodeService
	pagination config.PaginationConfig
	logger     *slog.Logger
}

// NewBusinessService is the constructor for businessService.
func NewBusinessService(params CatalogParams) usecase.BusinessUsecase {
	return &businessService{
		businesses: NewService(params.Store, "business", businessesOf, params.Config.Pagination, params.Logger, Hooks[entity.Business]{}),
		qrcodes:    params.QRCodes,
		pagination: params.Config.Pagination,
		logger:     params.Logger,
	}
}

func (srv *businessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// canManageBusiness reports whether the caller owns b or holds business:manage.
func canManageBusiness(principal deliverycontext.Principal, b *entity.Business) bool {
	callerID, ok := principal.CurrentUserID()

	return ok && (b.OwnerID == callerID || principal.HasPermission(entity.PermissionBusinessManage))
}

// loadManagedBusiness returns the business if it exists and the caller may change it.
func loadManagedBusiness(ctx context.Context, businesses usecase.Service[entity.Business], id uuid.UUID) (*entity.Business, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	if _, err := principal.RequireAuthenticated(); err != nil {
		return nil, err
	}

	business, err := businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("business " + id.String())
	}
	if !canManageBusiness(principal, business) {
		return nil, domainerrors.ErrAuthorizationDenied
	}

	return business, nil
}

// Create opens a business owned by the caller, who must be a seller or administrator.
func (srv *businessService) Create(ctx context.Context, input *usecase.CreateBusinessInput) (*entity.Business, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	callerID, err := principal.RequireAuthenticated()
	if err != nil {
		return nil, err
	}
	if !principal.HasPermission(entity.PermissionBusinessWrite) && !principal.HasRole(entity.RoleAdmin) {
		return nil, domainerrors.ErrAuthorizationDenied.WithDetails("only sellers can open a business")
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	business := &entity.Business{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		Email:       input.Email,
		Website:     input.Website,
		IsActive:    true,
		OwnerID:     callerID,
	}
	if err := srv.businesses.Create(ctx, business); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Business created", slog.Any("businessID", business.ID), slog.Any("ownerID", callerID))

	return business, nil
}

func (srv *businessService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateBusinessInput) (*entity.Business, error) {
	if _, err := loadManagedBusiness(ctx, srv.businesses, id); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = input.Description
	}
	if input.Address != nil {
		fields["address"] = input.Address
	}
	if input.Phone != nil {
		fields["phone"] = input.Phone
	}
	if input.Email != nil {
		fields["email"] = input.Email
	}
	if input.Website != nil {
		fields["website"] = input.Website
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	return srv.businesses.Update(ctx, id, fields)
}

func (srv *businessService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := loadManagedBusiness(ctx, srv.businesses, id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return srv.businesses.Delete(ctx, id)
}

func (srv *businessService) Get(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	return srv.businesses.GetByID(ctx, id)
}

func (srv *businessService) List(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.Business], error) {
	return srv.businesses.List(ctx, page)
}

func (srv *businessService) ListByOwner(ctx context.Context, ownerID uuid.UUID, page repository.Page) (*usecase.PageResult[entity.Business], error) {
	all, err := srv.businesses.FilterBy(ctx, repository.Fields{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}

	return paginate(all, page.Normalize(srv.pagination.DefaultLimit, srv.pagination.MaxLimit)), nil
}

func (srv *businessService) StorefrontQRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if srv.qrcodes == nil {
		return nil, errors.New("storefront QR codes are not configured")
	}

	business, err := srv.businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil || !business.IsActive {
		return nil, domainerrors.ErrNotFound.WithDetails("business " + id.String())
	}

	png, err := srv.qrcodes.StorefrontQR(business.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to render storefront QR code", slog.String("business_id", id.String()), slog.Any("error", err))

		return nil, err
	}

	return png, nil
}

// --- Items ---

type itemService struct {
	items      usecase.Service[entity.Item]
	businesses usecase.Service[entity.Business]
	pagination config.PaginationConfig
	logger     *slog.Logger
}

// NewItemService is the constructor for itemService.
func NewItemService(params CatalogParams) usecase.ItemUsecase {
	checkCategory := func(ctx context.Context, tx repository.Store, id *uuid.UUID) error {
		if id == nil {
			return nil
		}
		_, err := tx.Categories().FindByID(ctx, *id)
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("category %s does not exist", *id)
		}

		return err
	}

	return &itemService{
		items: NewService(params.Store, "item", itemsOf, params.Config.Pagination, params.Logger, Hooks[entity.Item]{
			BeforeCreate: func(ctx context.Context, tx repository.Store, item *entity.Item) error {
				return checkCategory(ctx, tx, item.CategoryID)
			},
			BeforeUpdate: func(ctx context.Context, tx repository.Store, _ uuid.UUID, fields repository.Fields) error {
				id, _ := fields["category_id"].(*uuid.UUID)

				return checkCategory(ctx, tx, id)
			},
		}),
		businesses: NewService(params.Store, "business", businessesOf, params.Config.Pagination, params.Logger, Hooks[entity.Business]{}),
		pagination: params.Config.Pagination,
		logger:     params.Logger,
	}
}

func (srv *itemService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Prices are stored as NUMERIC(12,2).
const priceDecimals = 2

var priceLimit = decimal.New(1, 10)

func checkPrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return invalid("price must not be negative")
	case !price.Equal(price.Round(priceDecimals)):
		return invalid("price must have at most %d decimal places", priceDecimals)
	case price.GreaterThanOrEqual(priceLimit):
		return invalid("price must be less than %s", priceLimit.String())
	}

	return nil
}

func (srv *itemService) Create(ctx context.Context, input *usecase.CreateItemInput) (*entity.Item, error) {
	if input == nil {
		return nil, invalid("input is required")
	}
	if _, err := loadManagedBusiness(ctx, srv.businesses, input.BusinessID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, invalid("unknown item type %q", input.Type)
	}
	if err := checkPrice(input.Price); err != nil {
		return nil, err
	}

	item := &entity.Item{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Type:            input.Type,
		CategoryID:      input.CategoryID,
		BusinessID:      input.BusinessID,
		Price:           input.Price,
		StockQuantity:   input.StockQuantity,
		ServiceDuration: input.ServiceDuration,
		Images:          input.Images,
		Tags:            input.Tags,
		IsActive:        true,
	}
	if err := srv.items.Create(ctx, item); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Item created", slog.Any("itemID", item.ID), slog.Any("businessID", item.BusinessID))

	return item, nil
}

// loadManagedItem returns the item if it exists and the caller manages its business.
func (srv *itemService) loadManagedItem(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := srv.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domainerrors.ErrNotFound.WithDetails("item " + id.String())
	}
	if _, err := loadManagedBusiness(ctx, srv.businesses, item.BusinessID); err != nil {
		return nil, err
	}

	return item, nil
}

func (srv *itemService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateItemInput) (*entity.Item, error) {
	if _, err := srv.loadManagedItem(ctx, id); err != nil {
		return nil, err
	}
	fields, err := itemFields(input)
	if err != nil {
		return nil, err
	}

	return srv.items.Update(ctx, id, fields)
}

// BulkUpdate changes several items of one business. Either every update is
// applied or none is.
func (srv *itemService) BulkUpdate(ctx context.Context, businessID uuid.UUID, updates []usecase.ItemBulkUpdate) ([]*entity.Item, error) {
	if _, err := loadManagedBusiness(ctx, srv.businesses, businessID); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, invalid("no updates given")
	}

	owned, err := srv.items.FilterBy(ctx, repository.Fields{"business_id": businessID})
	if err != nil {
		return nil, err
	}
	inBusiness := make(map[uuid.UUID]bool, len(owned))
	for _, item := range owned {
		inBusiness[item.ID] = true
	}

	batch := make([]usecase.BulkUpdate, 0, len(updates))
	seen := make(map[uuid.UUID]bool, len(updates))
	for i, u := range updates {
		if !inBusiness[u.ID] {
			return nil, domainerrors.ErrNotFound.WithDetails("item " + u.ID.String() + " in business " + businessID.String())
		}
		if seen[u.ID] {
			return nil, invalid("item %s is updated twice", u.ID)
		}
		seen[u.ID] = true

		fields, err := itemFields(u.Input)
		if err != nil {
			return nil, errors.WithMessagef(err, "update %d", i)
		}
		batch = append(batch, usecase.BulkUpdate{ID: u.ID, Fields: fields})
	}

	updated, err := srv.items.BulkUpdate(ctx, batch)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Items updated", slog.Any("businessID", businessID), slog.Int("count", len(updated)))

	return updated, nil
}

// itemFields turns a partial update into the columns it changes.
func itemFields(input *usecase.UpdateItemInput) (repository.Fields, error) {
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = input.Description
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, invalid("unknown item type %q", *input.Type)
		}
		fields["type"] = *input.Type
	}
	if input.CategoryID != nil {
		fields["category_id"] = input.CategoryID
	}
	if input.Price != nil {
		if err := checkPrice(*input.Price); err != nil {
			return nil, err
		}
		fields["price"] = *input.Price
	}
	if input.StockQuantity != nil {
		fields["stock_quantity"] = *input.StockQuantity
	}
	if input.ServiceDuration != nil {
		fields["service_duration"] = input.ServiceDuration
	}
	if input.Images != nil {
		fields["images"] = input.Images
	}
	if input.Tags != nil {
		fields["tags"] = input.Tags
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, invalid("no fields to update")
	}

	return fields, nil
}

func (srv *itemService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := srv.loadManagedItem(ctx, id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return srv.items.Delete(ctx, id)
}

func (srv *itemService) Get(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return srv.items.GetByID(ctx, id)
}

func (srv *itemService) List(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.Item], error) {
	return srv.items.List(ctx, page)
}

func (srv *itemService) ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*usecase.PageResult[entity.Item], error) {
	all, err := srv.items.FilterBy(ctx, repository.Fields{"business_id": businessID})
	if err != nil {
		return nil, err
	}

	return paginate(all, page.Normalize(srv.pagination.DefaultLimit, srv.pagination.MaxLimit)), nil
}

func (srv *itemService) Search(ctx context.Context, query string, page repository.Page) ([]*entity.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entity.Item{}, nil
	}

	return srv.items.Search(ctx, query, []string{"name", "description"}, page)
}
