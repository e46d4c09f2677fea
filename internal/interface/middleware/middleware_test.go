package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, mw gin.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	var captured *gin.Context
	r := gin.New()
	r.Use(mw)
	r.GET("/", func(c *gin.Context) {
		captured = c
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(w, req)
	require.NotNil(t, captured)
	return w, captured
}

func TestRequestID(t *testing.T) {
	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w, c := serve(t, RequestID(), req)

		id := c.GetString("request_id")
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("reuses a valid inbound id", func(t *testing.T) {
		inbound := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", inbound)
		w, c := serve(t, RequestID(), req)

		assert.Equal(t, inbound, c.GetString("request_id"))
		assert.Equal(t, inbound, w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "not-a-uuid")
		_, c := serve(t, RequestID(), req)

		id := c.GetString("request_id")
		assert.NotEqual(t, "not-a-uuid", id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestRealIP(t *testing.T) {
	t.Run("cloudflare header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("CF-Connecting-IP", "203.0.113.9")
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		_, c := serve(t, RealIP(), req)
		assert.Equal(t, "203.0.113.9", c.GetString("real_ip"))
	})

	t.Run("left-most forwarded entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
		_, c := serve(t, RealIP(), req)
		assert.Equal(t, "198.51.100.1", c.GetString("real_ip"))
	})

	t.Run("unparseable headers fall back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "not-an-ip")
		_, c := serve(t, RealIP(), req)
		assert.NotEmpty(t, c.GetString("real_ip"))
		assert.NotEqual(t, "not-an-ip", c.GetString("real_ip"))
	})
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{name: "loopback", ip: "127.0.0.1", want: true},
		{name: "rfc1918", ip: "192.168.1.20", want: true},
		{name: "public", ip: "203.0.113.9", want: false},
		{name: "garbage", ip: "nope", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set("real_ip", tt.ip)
			assert.Equal(t, tt.want, allow(c))
		})
	}
}
