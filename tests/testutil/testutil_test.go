package testutil

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicer/backend/internal/infrastructure/logger"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.Equal(t, "postgres", mockDB.DB.Dialector.Name())
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	tc.SetOwnerID("owner-1")
	tc.SetHeader("Authorization", "Bearer token")

	assert.Equal(t, "req-123", tc.Context.GetString(logger.GinRequestIDKey))
	assert.Equal(t, "owner-1", tc.Context.GetString(logger.GinOwnerIDKey))
	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))

	tc.Recorder.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
}

func TestNewTestOwnerID(t *testing.T) {
	assert.Equal(t, NewTestOwnerID("a"), NewTestOwnerID("a"))
	assert.NotEqual(t, NewTestOwnerID("a"), NewTestOwnerID("b"))
	assert.Len(t, NewTestOwnerID("a"), 36)
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestAssertEventually(t *testing.T) {
	var counter atomic.Int32
	go func() {
		time.Sleep(50 * time.Millisecond)
		counter.Store(1)
	}()

	AssertEventually(t, func() bool {
		return counter.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "owner": c.GetHeader(OwnerHeader)})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "plain",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"success": true},
		},
		{
			Name:           "with owner header",
			Method:         http.MethodPost,
			Body:           map[string]string{"k": "v"},
			Headers:        map[string]string{OwnerHeader: "u1"},
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"owner": "u1"},
		},
	})
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"owner": c.GetHeader(OwnerHeader), "k": body["k"]}})
	})
	engine.POST("/upload", func(c *gin.Context) {
		fh, err := c.FormFile("logo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "ERR_BAD_REQUEST"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"size": fh.Size}})
	})

	client := NewAPIClient(engine, "owner-9")

	tc := client.Do(t, http.MethodPost, "/echo", map[string]string{"k": "v"})
	AssertSuccessResponse(t, tc)
	resp := JSONResponseAs[struct {
		Data struct {
			Owner string `json:"owner"`
			K     string `json:"k"`
		} `json:"data"`
	}](t, tc)
	assert.Equal(t, "owner-9", resp.Data.Owner)
	assert.Equal(t, "v", resp.Data.K)

	tc = client.Upload(t, "/upload", "logo", "logo.png", []byte("12345"))
	AssertSuccessResponse(t, tc)

	tc = client.Upload(t, "/upload", "other", "logo.png", []byte("12345"))
	assert.Equal(t, http.StatusBadRequest, tc.ResponseCode())
	AssertErrorResponse(t, tc, "ERR_BAD_REQUEST")
}
