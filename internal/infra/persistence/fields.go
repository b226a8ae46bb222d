// Package persistence declares the storage-neutral field names each adapter accepts
// in updates, filters and searches.
package persistence

import (
	"slices"

	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
)

// FieldSet lists the writable and searchable fields of one table or collection.
// Identifier and timestamps are never writable.
type FieldSet struct {
	writable   map[string]struct{}
	searchable map[string]struct{}
}

func newFieldSet(writable []string, searchable ...string) *FieldSet {
	fs := &FieldSet{
		writable:   make(map[string]struct{}, len(writable)),
		searchable: make(map[string]struct{}, len(searchable)),
	}
	for _, f := range writable {
		fs.writable[f] = struct{}{}
	}
	for _, f := range searchable {
		fs.searchable[f] = struct{}{}
	}

	return fs
}

var (
	UserFields = newFieldSet([]string{
		"email", "password_hash", "full_name", "phone", "role", "customer_category",
		"admin_role", "seller_type", "delivery_addresses", "is_active",
	}, "email", "full_name")

	BusinessFields = newFieldSet([]string{
		"name", "description", "address", "phone", "email", "website", "is_active", "owner_id",
	}, "name", "description", "address")

	CategoryFields = newFieldSet([]string{
		"name", "description", "parent_category_id", "is_active", "created_by",
	}, "name", "description")

	ItemFields = newFieldSet([]string{
		"name", "description", "type", "category_id", "business_id", "price",
		"stock_quantity", "service_duration", "images", "tags", "is_active",
	}, "name", "description")

	OrderFields = newFieldSet([]string{
		"status", "total_amount", "customer_id", "business_id", "delivery_address", "special_instructions",
	}, "delivery_address", "special_instructions")

	OrderItemFields = newFieldSet([]string{
		"order_id", "item_id", "quantity", "price",
	})

	ReviewFields = newFieldSet([]string{
		"user_id", "business_id", "rating", "comment",
	}, "comment")

	TokenFields = newFieldSet([]string{
		"token_hash", "user_id", "is_active", "expires_at",
	})
)

// CheckWritable rejects fields that are unknown or read-only. Keys are
// returned sorted so adapters build deterministic statements.
func (fs *FieldSet) CheckWritable(fields repository.Fields) ([]string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := fs.writable[k]; !ok {
			return nil, domainerrors.ErrValidation.WithDetails("unknown field: " + k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys, nil
}

// CheckSearchable rejects an empty field list or any field that holds no free text.
func (fs *FieldSet) CheckSearchable(fields []string) error {
	if len(fields) == 0 {
		return domainerrors.ErrValidation.WithDetails("at least one search field is required")
	}
	for _, f := range fields {
		if _, ok := fs.searchable[f]; !ok {
			return domainerrors.ErrValidation.WithDetails("field is not searchable: " + f)
		}
	}

	return nil
}
