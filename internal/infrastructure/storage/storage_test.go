package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadBucketOutput)
	return out, args.Error(1)
}

func (m *mockS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CreateBucketOutput)
	return out, args.Error(1)
}

func TestLogoKey(t *testing.T) {
	key := logoKey("../owner", pngData(t))

	assert.True(t, strings.HasPrefix(key, "logos/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotContains(t, key, "..")
	assert.Equal(t, "bin", extension([]byte("plain text")))
}

func TestS3AssetStore_Upload(t *testing.T) {
	ctx := context.Background()
	data := pngData(t)

	t.Run("puts the object and returns the public url", func(t *testing.T) {
		api := new(mockS3)
		api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			body, _ := io.ReadAll(in.Body)
			return *in.Bucket == "logos" && *in.ContentType == "image/png" && bytes.Equal(body, data)
		})).Return(&s3.PutObjectOutput{}, nil)

		store := &S3AssetStore{client: api, bucket: "logos", publicBaseURL: "https://cdn.test", logger: zap.NewNop()}
		url, err := store.Upload(ctx, "u1", data, "image/png")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.test/logos/"))
		api.AssertExpectations(t)
	})

	t.Run("wraps upload errors", func(t *testing.T) {
		api := new(mockS3)
		api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

		store := &S3AssetStore{client: api, bucket: "logos", logger: zap.NewNop()}
		_, err := store.Upload(ctx, "u1", data, "image/png")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestS3AssetStore_EnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("existing bucket", func(t *testing.T) {
		api := new(mockS3)
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)

		store := &S3AssetStore{client: api, bucket: "logos", logger: zap.NewNop()}
		require.NoError(t, store.EnsureBucket(ctx))
		api.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("creates a missing bucket", func(t *testing.T) {
		api := new(mockS3)
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
		api.On("CreateBucket", mock.Anything, mock.Anything).Return(&s3.CreateBucketOutput{}, nil)

		store := &S3AssetStore{client: api, bucket: "logos", logger: zap.NewNop()}
		require.NoError(t, store.EnsureBucket(ctx))
		api.AssertExpectations(t)
	})
}

func TestNewS3AssetStore_RequiresBucket(t *testing.T) {
	_, err := NewS3AssetStore(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestFileSystemAssetStore_Upload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSystemAssetStore(dir, "/assets/")
	require.NoError(t, err)

	data := pngData(t)
	url, err := store.Upload(context.Background(), "u1", data, "image/png")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "/assets/logos/"))
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/assets/"))))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}
