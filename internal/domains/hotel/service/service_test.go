package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aspen/config"
	"aspen/infras/otel/mocks"
	hotelMocks "aspen/internal/domains/hotel/mocks"
	"aspen/internal/domains/hotel/model"
	"aspen/internal/domains/hotel/model/dto"
	"aspen/internal/domains/hotel/service"
	cacheMocks "aspen/shared/cache/mocks"
	"aspen/shared/constant"
	"aspen/shared/failure"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(t *testing.T) (service.Hotel, *hotelMocks.MockHotel, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := hotelMocks.NewMockHotel(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func TestHotelService_Create(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	req := dto.CreateHotelRequest{
		Name:       "ASPEN GRAND HOTELS",
		Address:    "908 West G Street",
		City:       "La Porte",
		State:      "Texas",
		Country:    "United States",
		PostalCode: "77571",
		Amenities:  []string{"Free Wi-Fi", "Pool"},
		Rating:     4.2,
	}

	var inserted model.Hotel

	mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h model.Hotel) error {
		inserted = h

		return nil
	})

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
	res, err := svc.Create(ctx, req)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "admin-id", inserted.CreatedBy)
	assert.Equal(t, pq.StringArray{"Free Wi-Fi", "Pool"}, inserted.Amenities)
	assert.True(t, decimal.RequireFromString("4.2").Equal(inserted.Rating))
	assert.InDelta(t, 4.2, res.Rating, 0.0001)
}

func TestHotelService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*hotelMocks.MockHotel, *cacheMocks.MockRedisCache)
		wantCode  int
	}{
		{
			name: "found in repository",
			setupMock: func(repo *hotelMocks.MockHotel, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), "hotel:get:h1", gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Hotel{ID: "h1", Name: "ASPEN"}, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(repo *hotelMocks.MockHotel, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Hotel{}, nil)
			},
			wantCode: 404,
		},
		{
			name: "storage failure",
			setupMock: func(repo *hotelMocks.MockHotel, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Hotel{}, errors.New("connection refused"))
			},
			wantCode: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := newService(t)
			tt.setupMock(mockRepo, mockCache)

			res, err := svc.Get(context.Background(), "h1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ASPEN", res.Name)
		})
	}
}

func TestHotelService_Update(t *testing.T) {
	rating := 4.5

	tests := []struct {
		name      string
		req       dto.UpdateHotelRequest
		setupMock func(*hotelMocks.MockHotel)
		wantCode  int
	}{
		{
			name:     "empty request",
			req:      dto.UpdateHotelRequest{},
			wantCode: 400,
		},
		{
			name: "not found",
			req:  dto.UpdateHotelRequest{Name: "New"},
			setupMock: func(repo *hotelMocks.MockHotel) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: 404,
		},
		{
			name: "updates rating as decimal",
			req:  dto.UpdateHotelRequest{Rating: &rating},
			setupMock: func(repo *hotelMocks.MockHotel) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ any) error {
					value, ok := fields[model.FieldRating].(decimal.Decimal)
					assert.True(t, ok)
					assert.True(t, decimal.RequireFromString("4.5").Equal(value))

					return nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}

			err := svc.Update(context.Background(), tt.req, "h1")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestHotelService_Delete_ReferencedHotel(t *testing.T) {
	svc, mockRepo, _ := newService(t)

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23503"})

	err := svc.Delete(context.Background(), "h1")

	assert.Equal(t, 409, failure.GetCode(err))
}
