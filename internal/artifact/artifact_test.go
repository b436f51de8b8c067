package artifact

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passdesk/passdesk/internal/models"
)

func TestQRFileNameSanitizes(t *testing.T) {
	assert.Equal(t, "PASS-ABC123XYZ0.png", QRFileName("PASS-ABC123XYZ0"))
	assert.Equal(t, "___etc_passwd.png", QRFileName("../etc/passwd"))
	assert.Equal(t, "a_b_c.png", QRFileName("a b/c"))
}

func TestQRRelPath(t *testing.T) {
	assert.Equal(t, "qr/PASS-ABC123XYZ0.png", QRRelPath("PASS-ABC123XYZ0"))
}

func TestEncodeQRDeterministic(t *testing.T) {
	first, err := EncodeQR("PASS-ABC123XYZ0")
	require.NoError(t, err)
	second, err := EncodeQR("PASS-ABC123XYZ0")
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second, "same code must render identical bytes")

	other, err := EncodeQR("PASS-DIFFERENT1")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/uploads/")

	data := []byte("png-bytes")
	require.NoError(t, s.Save(context.Background(), "qr/test.png", data))

	r, err := s.Open(context.Background(), "qr/test.png")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStoragePublicURL(t *testing.T) {
	s := NewLocalStorage("uploads", "/uploads/")
	assert.Equal(t, "/uploads/qr/x.png", s.PublicURL("qr/x.png"))
}

func TestBuildBadgeProducesPDF(t *testing.T) {
	visitor := &models.Visitor{ID: uuid.New(), FirstName: "Grace", LastName: "Hopper", Company: "Navy"}
	pass := &models.Pass{ID: uuid.New(), Code: "PASS-ABC123XYZ0", Status: models.PassStatusIssued}

	pdf, err := BuildBadge(pass, visitor)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
