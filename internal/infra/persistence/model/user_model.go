package model

import (
	"market/internal/domain/entity"

	"gorm.io/datatypes"
)

// UserModel mirrors the 'users' table.
type UserModel struct {
	Base
	Email             string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash      string                      `gorm:"type:varchar(255);not null"`
	FullName          string                      `gorm:"type:varchar(255);not null"`
	Phone             *string                     `gorm:"type:varchar(50)"`
	Role              string                      `gorm:"type:varchar(20);not null;index"`
	CustomerCategory  *string                     `gorm:"type:varchar(50)"`
	AdminRole         *string                     `gorm:"type:varchar(50)"`
	SellerType        *string                     `gorm:"type:varchar(50)"`
	DeliveryAddresses datatypes.JSONSlice[string] `gorm:"not null"`
	IsActive          bool                        `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// FromUser maps a domain user onto its row.
func FromUser(u *entity.User) *UserModel {
	return &UserModel{
		Base:              fromBase(u.Base),
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		FullName:          u.FullName,
		Phone:             u.Phone,
		Role:              string(u.Role),
		CustomerCategory:  (*string)(u.CustomerCategory),
		AdminRole:         (*string)(u.AdminRole),
		SellerType:        (*string)(u.SellerType),
		DeliveryAddresses: jsonStrings(u.DeliveryAddresses),
		IsActive:          u.IsActive,
	}
}

// ToEntity maps the row back to a domain user.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		Base:              m.Base.toEntity(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		Phone:             m.Phone,
		Role:              entity.Role(m.Role),
		CustomerCategory:  (*entity.CustomerCategory)(m.CustomerCategory),
		AdminRole:         (*entity.AdminRole)(m.AdminRole),
		SellerType:        (*entity.SellerType)(m.SellerType),
		DeliveryAddresses: plainStrings(m.DeliveryAddresses),
		IsActive:          m.IsActive,
	}
}
