package invoice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app "github.com/invoicer/backend/internal/application/invoice"
	domain "github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

func TestLogoPolicy_Prepare(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the inline limit", func(t *testing.T) {
		p := app.NewLogoPolicy(0, 0, nil, nil)
		assert.Equal(t, app.DefaultInlineLimitBytes, p.InlineLimitBytes)
		assert.Equal(t, app.DefaultMaxUploadBytes, p.MaxUploadBytes)
	})

	t.Run("inline at the limit", func(t *testing.T) {
		data := pngBytes(t, 4)
		p := app.NewLogoPolicy(len(data), 0, nil, nil)

		logo, err := p.Prepare(ctx, testOwner, data)

		require.NoError(t, err)
		assert.Equal(t, domain.LogoInline, logo.Kind)
		assert.Equal(t, app.DataURL("image/png", data), logo.Data)
	})

	t.Run("one byte over the limit without a store", func(t *testing.T) {
		data := pngBytes(t, 4)
		p := app.NewLogoPolicy(len(data)-1, 0, nil, nil)

		_, err := p.Prepare(ctx, testOwner, data)

		assert.True(t, errors.Is(err, shared.ErrAssetTooLarge))
	})

	t.Run("over the upload cap even with a store", func(t *testing.T) {
		data := pngBytes(t, 4)
		assets := new(MockAssetStore)
		p := app.NewLogoPolicy(8, len(data)-1, assets, nil)

		_, err := p.Prepare(ctx, testOwner, data)

		assert.True(t, errors.Is(err, shared.ErrAssetTooLarge))
		assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("asset store failure", func(t *testing.T) {
		assets := new(MockAssetStore)
		assets.On("Upload", mock.Anything, testOwner, mock.Anything, "image/png").Return("", errors.New("denied"))
		p := app.NewLogoPolicy(8, 0, assets, nil)

		_, err := p.Prepare(ctx, testOwner, pngBytes(t, 4))

		assert.True(t, errors.Is(err, shared.ErrPersistenceFailed))
	})

	t.Run("corrupt png", func(t *testing.T) {
		data := pngBytes(t, 4)
		corrupt := append([]byte(nil), data[:24]...)
		p := app.NewLogoPolicy(0, 0, nil, nil)

		_, err := p.Prepare(ctx, testOwner, corrupt)

		assert.True(t, errors.Is(err, shared.ErrUnsupportedAsset))
	})

	t.Run("empty upload", func(t *testing.T) {
		p := app.NewLogoPolicy(0, 0, nil, nil)

		_, err := p.Prepare(ctx, testOwner, nil)

		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}
