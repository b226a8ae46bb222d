// Package qrcode renders business storefront links as QR code images.
package qrcode

import (
	"strings"

	"market/config"
	"market/internal/domain/service"
	"market/internal/errors"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const storefrontPath = "/businesses/"

type qrcodeService struct {
	size    int
	level   qrcode.RecoveryLevel
	baseURL string
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	return &qrcodeService{
		size:    cfg.QRCode.Size,
		level:   recoveryLevel(cfg.QRCode.ErrorCorrectionLevel),
		baseURL: strings.TrimRight(cfg.QRCode.BaseURL, "/"),
	}
}

func recoveryLevel(name string) qrcode.RecoveryLevel {
	switch strings.ToUpper(name) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func (s *qrcodeService) storefrontLink(businessID uuid.UUID) string {
	return s.baseURL + storefrontPath + businessID.String()
}

// StorefrontQR generates a PNG QR code pointing at the business storefront.
func (s *qrcodeService) StorefrontQR(businessID uuid.UUID) ([]byte, error) {
	code, err := qrcode.New(s.storefrontLink(businessID), s.level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	png, err := code.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render QR code")
	}

	return png, nil
}

// ParseStorefrontLink returns the business id of a link produced by StorefrontQR.
func (s *qrcodeService) ParseStorefrontLink(link string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(link), s.baseURL+storefrontPath)
	if !ok {
		return uuid.Nil, errors.Errorf("not a storefront link: %q", link)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to parse business id")
	}

	return id, nil
}
