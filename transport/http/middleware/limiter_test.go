package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aspen/config"
	"aspen/infras/otel/mocks"
	cacheMocks "aspen/shared/cache/mocks"
	"aspen/shared/constant"
	"aspen/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		enabled       bool
		count         int64
		incrErr       error
		wantStatus    int
		wantRemaining string
	}{
		{name: "disabled passes through", wantStatus: http.StatusOK},
		{name: "under limit", enabled: true, count: 1, wantStatus: http.StatusOK, wantRemaining: "2"},
		{name: "at limit", enabled: true, count: 3, wantStatus: http.StatusOK, wantRemaining: "0"},
		{name: "over limit", enabled: true, count: 4, wantStatus: http.StatusTooManyRequests, wantRemaining: "0"},
		{name: "redis down fails open", enabled: true, incrErr: errors.New("dial tcp: refused"), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			rc := cacheMocks.NewMockRedisCache(ctrl)

			cfg := &config.Config{}
			cfg.App.RateLimiter.Enable = tt.enabled
			cfg.App.RateLimiter.MaxRequests = 3
			cfg.App.RateLimiter.WindowSeconds = 60

			if tt.enabled {
				rc.EXPECT().Increment(gomock.Any(), "limiter:203.0.113.7:curl", 60).Return(tt.count, tt.incrErr)
			}

			mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, rc)
			h := mw.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/hotels", nil)
			req.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.7, 10.0.0.1")
			req.Header.Set(constant.RequestHeaderUserAgent, "curl")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		})
	}
}
