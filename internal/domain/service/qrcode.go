package service

import "github.com/google/uuid"

// QRCodeService renders and reads the storefront QR code of a business.
type QRCodeService interface {
	// StorefrontQR returns a PNG encoding the business storefront link.
	StorefrontQR(businessID uuid.UUID) ([]byte, error)

	// ParseStorefrontLink extracts the business id from a scanned link.
	ParseStorefrontLink(link string) (uuid.UUID, error)
}
