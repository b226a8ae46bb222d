package entity

import "slices"

// Role represents the type of account a user holds.
type Role string

const (
	// RoleAdmin indicates a platform administrator.
	RoleAdmin Role = "admin"
	// RoleSeller indicates an account that owns businesses.
	RoleSeller Role = "seller"
	// RoleCustomer indicates a regular buyer account.
	RoleCustomer Role = "customer"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	default:
		return false
	}
}

// AdminRole narrows what an administrator may manage.
type AdminRole string

const (
	AdminRoleSuper           AdminRole = "super_admin"
	AdminRoleCategoryManager AdminRole = "category_manager"
	AdminRoleUserManager     AdminRole = "user_manager"
	AdminRoleOrderManager    AdminRole = "order_manager"
)

// IsValid checks if the AdminRole is a valid value.
func (r AdminRole) IsValid() bool {
	switch r {
	case AdminRoleSuper, AdminRoleCategoryManager, AdminRoleUserManager, AdminRoleOrderManager:
		return true
	default:
		return false
	}
}

// CustomerCategory classifies what a customer mostly buys.
type CustomerCategory string

const (
	CustomerCategoryFoodBuyer     CustomerCategory = "food_buyer"
	CustomerCategoryServiceSeeker CustomerCategory = "service_seeker"
	CustomerCategoryGroceryBuyer  CustomerCategory = "grocery_buyer"
	CustomerCategoryGeneral       CustomerCategory = "general"
)

// IsValid checks if the CustomerCategory is a valid value.
func (c CustomerCategory) IsValid() bool {
	switch c {
	case CustomerCategoryFoodBuyer, CustomerCategoryServiceSeeker, CustomerCategoryGroceryBuyer, CustomerCategoryGeneral:
		return true
	default:
		return false
	}
}

// SellerType classifies the kind of seller.
type SellerType string

const (
	SellerTypeRestaurant      SellerType = "restaurant"
	SellerTypeGroceryStore    SellerType = "grocery_store"
	SellerTypeServiceProvider SellerType = "service_provider"
	SellerTypeGeneral         SellerType = "general_seller"
)

// IsValid checks if the SellerType is a valid value.
func (s SellerType) IsValid() bool {
	switch s {
	case SellerTypeRestaurant, SellerTypeGroceryStore, SellerTypeServiceProvider, SellerTypeGeneral:
		return true
	default:
		return false
	}
}

// Permission is a named capability carried in the access token.
type Permission string

const (
	PermissionUserRead       Permission = "user:read"
	PermissionUserWrite      Permission = "user:write"
	PermissionCategoryWrite  Permission = "category:write"
	PermissionBusinessWrite  Permission = "business:write"
	PermissionBusinessManage Permission = "business:manage"
	PermissionOrderCreate    Permission = "order:create"
	PermissionOrderManage    Permission = "order:manage"
	PermissionReviewWrite    Permission = "review:write"
	PermissionReviewModerate Permission = "review:moderate"
)

// Permissions is a slice of Permission for convenience.
type Permissions []Permission

// Contains checks if the permissions slice contains a specific permission.
func (ps Permissions) Contains(p Permission) bool {
	return slices.Contains(ps, p)
}

// ToStrings converts Permissions to []string for JWT compatibility.
func (ps Permissions) ToStrings() []string {
	result := make([]string, len(ps))
	for i, p := range ps {
		result[i] = string(p)
	}

	return result
}

// PermissionsFromStrings converts []string to Permissions.
func PermissionsFromStrings(ss []string) Permissions {
	result := make(Permissions, 0, len(ss))
	for _, s := range ss {
		result = append(result, Permission(s))
	}

	return result
}

var allPermissions = Permissions{
	PermissionUserRead,
	PermissionUserWrite,
	PermissionCategoryWrite,
	PermissionBusinessWrite,
	PermissionBusinessManage,
	PermissionOrderCreate,
	PermissionOrderManage,
	PermissionReviewWrite,
	PermissionReviewModerate,
}

// PermissionsFor derives the capability set of an account from its role and,
// for administrators, its admin role.
func PermissionsFor(role Role, adminRole *AdminRole) Permissions {
	switch role {
	case RoleCustomer:
		return Permissions{PermissionOrderCreate, PermissionReviewWrite}
	case RoleSeller:
		return Permissions{PermissionBusinessWrite, PermissionOrderCreate, PermissionReviewWrite}
	case RoleAdmin:
		perms := Permissions{PermissionUserRead}
		if adminRole == nil {
			return perms
		}
		switch *adminRole {
		case AdminRoleSuper:
			return slices.Clone(allPermissions)
		case AdminRoleCategoryManager:
			perms = append(perms, PermissionCategoryWrite)
		case AdminRoleUserManager:
			perms = append(perms, PermissionUserWrite)
		case AdminRoleOrderManager:
			perms = append(perms, PermissionOrderManage, PermissionBusinessManage)
		}

		return perms
	default:
		return nil
	}
}
