package invoice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

// Logo size limits
const (
	DefaultInlineLimitBytes = 800000
	DefaultMaxUploadBytes   = 5 << 20
)

// decodable lists the formats whose pixels are checked before accepting them
var decodable = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// LogoPolicy decides how an uploaded logo is kept.
//
// Images up to InlineLimitBytes are embedded in the document as a data URL.
// Larger ones go to the asset store and are kept by reference; without an
// asset store they are rejected with shared.ErrAssetTooLarge.
type LogoPolicy struct {
	InlineLimitBytes int
	MaxUploadBytes   int
	Assets           invoice.AssetStore
	logger           *zap.Logger
}

// NewLogoPolicy creates a logo policy. assets may be nil.
func NewLogoPolicy(inlineLimit, maxUpload int, assets invoice.AssetStore, logger *zap.Logger) *LogoPolicy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inlineLimit <= 0 {
		inlineLimit = DefaultInlineLimitBytes
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &LogoPolicy{
		InlineLimitBytes: inlineLimit,
		MaxUploadBytes:   maxUpload,
		Assets:           assets,
		logger:           logger,
	}
}

// Prepare validates an uploaded image and returns the logo to store.
// Size and type are checked before any I/O.
func (p *LogoPolicy) Prepare(ctx context.Context, ownerID string, data []byte) (invoice.Logo, error) {
	if len(data) == 0 {
		return invoice.Logo{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "Logo file is empty")
	}

	size := len(data)
	if size > p.MaxUploadBytes || (size > p.InlineLimitBytes && p.Assets == nil) {
		limit := p.InlineLimitBytes
		if p.Assets != nil {
			limit = p.MaxUploadBytes
		}
		return invoice.Logo{}, shared.NewDomainError(shared.ErrAssetTooLarge.Code,
			fmt.Sprintf("Logo is %d bytes, the limit is %d bytes", size, limit))
	}

	contentType, err := sniffImage(data)
	if err != nil {
		return invoice.Logo{}, err
	}

	if size <= p.InlineLimitBytes {
		return invoice.InlineLogo(DataURL(contentType, data)), nil
	}

	url, err := p.Assets.Upload(ctx, ownerID, data, contentType)
	if err != nil {
		p.logger.Error("failed to upload logo",
			zap.String("owner_id", ownerID),
			zap.Int("size", size),
			zap.Error(err))
		return invoice.Logo{}, fmt.Errorf("%w: %v", shared.ErrPersistenceFailed, err)
	}
	return invoice.ReferencedLogo(url), nil
}

// DataURL encodes data as a base64 data URL
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func sniffImage(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", shared.NewDomainError(shared.ErrUnsupportedAsset.Code, "Logo must be an image")
	}
	mime := kind.MIME.Value
	if decodable[mime] {
		if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
			return "", shared.NewDomainError(shared.ErrUnsupportedAsset.Code, "Logo image is corrupt")
		}
	}
	return mime, nil
}
