package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"market/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(size int, level string) *qrcodeService {
	cfg := &config.Config{QRCode: &config.QRCodeConfig{
		Size:                 size,
		ErrorCorrectionLevel: level,
		BaseURL:              "https://market.example/",
	}}

	return NewQRCodeService(cfg).(*qrcodeService)
}

func TestNewQRCodeService_RecoveryLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{level: "L", want: "Low"},
		{level: "m", want: "Medium"},
		{level: "Q", want: "High"},
		{level: "H", want: "Highest"},
		{level: "bogus", want: "Medium"},
	}

	names := map[string]int{"Low": 0, "Medium": 1, "High": 2, "Highest": 3}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			srv := newTestService(128, tt.level)
			assert.EqualValues(t, names[tt.want], srv.level)
			assert.Equal(t, "https://market.example", srv.baseURL)
		})
	}
}

func TestStorefrontQR(t *testing.T) {
	srv := newTestService(200, "M")

	out, err := srv.StorefrontQR(uuid.New())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestParseStorefrontLink(t *testing.T) {
	srv := newTestService(128, "M")
	id := uuid.New()

	got, err := srv.ParseStorefrontLink(" " + srv.storefrontLink(id) + "\n")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	tests := []struct {
		name string
		link string
	}{
		{name: "other host", link: "https://elsewhere.example/businesses/" + id.String()},
		{name: "other path", link: "https://market.example/items/" + id.String()},
		{name: "bad id", link: "https://market.example/businesses/42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.ParseStorefrontLink(tt.link)
			assert.Error(t, err)
		})
	}
}
