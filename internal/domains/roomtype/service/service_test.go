package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"aspen/config"
	"aspen/infras/otel/mocks"
	pgMocks "aspen/infras/postgres/mocks"
	s3Mocks "aspen/infras/s3/mocks"
	roomMocks "aspen/internal/domains/room/mocks"
	roomModel "aspen/internal/domains/room/model"
	roomDto "aspen/internal/domains/room/model/dto"
	roomTypeMocks "aspen/internal/domains/roomtype/mocks"
	"aspen/internal/domains/roomtype/model"
	"aspen/internal/domains/roomtype/model/dto"
	"aspen/internal/domains/roomtype/service"
	cacheMocks "aspen/shared/cache/mocks"
	"aspen/shared/constant"
	"aspen/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	svc      service.RoomType
	repo     *roomTypeMocks.MockRoomType
	roomRepo *roomMocks.MockRoom
	cache    *cacheMocks.MockRedisCache
	storage  *s3Mocks.MockS3
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := fixture{
		repo:     roomTypeMocks.NewMockRoomType(ctrl),
		roomRepo: roomMocks.NewMockRoom(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		storage:  s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.roomRepo, pgMocks.NewTransactor(), cfg, f.cache, mocks.NewOtel(), f.storage)

	return f
}

func TestRoomTypeService_Create(t *testing.T) {
	req := dto.CreateRoomTypeRequest{
		HotelID:       "8a4c1f7e-0d5b-4a8e-9d53-0c5d4b3f2a11",
		Name:          "Deluxe",
		MaxOccupancy:  2,
		PricePerNight: 100,
		Rooms: []roomDto.RoomNumberRequest{
			{RoomNumber: "101", FloorNumber: 1},
			{RoomNumber: "102", FloorNumber: 1},
		},
	}

	tests := []struct {
		name      string
		setupMock func(t *testing.T, f fixture)
		wantCode  int
		wantKind  string
	}{
		{
			name: "room type and rooms inserted together",
			setupMock: func(t *testing.T, f fixture) {
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ *sqlx.Tx, rt model.RoomType) error {
					assert.True(t, decimal.NewFromInt(100).Equal(rt.PricePerNight))

					return nil
				})
				f.roomRepo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ *sqlx.Tx, rooms []roomModel.Room) error {
					require.Len(t, rooms, 2)

					for _, room := range rooms {
						assert.Equal(t, roomModel.StatusAvailable, room.Status)
						assert.Equal(t, req.HotelID, room.HotelID)
					}

					return nil
				})
			},
		},
		{
			name: "duplicate room number",
			setupMock: func(t *testing.T, f fixture) {
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.roomRepo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: "23505"})
			},
			wantCode: 409,
		},
		{
			name: "unknown hotel",
			setupMock: func(t *testing.T, f fixture) {
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23503"})
			},
			wantCode: 404,
		},
		{
			name: "database down",
			setupMock: func(t *testing.T, f fixture) {
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
			},
			wantCode: 503,
			wantKind: failure.KindStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			res, err := f.svc.Create(context.Background(), req)

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantKind != "" {
					assert.True(t, failure.IsKind(err, tt.wantKind))
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 2, res.TotalRooms)
			assert.Equal(t, "100.00", res.PricePerNight)
		})
	}
}

func TestRoomTypeService_GetPresignsPhotos(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "room_type:get:rt1", gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{
		ID:            "rt1",
		Name:          "Deluxe",
		PricePerNight: decimal.RequireFromString("100"),
		Photos:        pq.StringArray{"room-types/rt1/a.jpg", "room-types/rt1/b.jpg"},
	}, nil)
	f.roomRepo.EXPECT().CountByRoomType(gomock.Any(), "rt1").Return(3, nil)
	f.storage.EXPECT().PresignURL(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, key string) (string, error) {
		return "https://signed.example/" + key, nil
	}).Times(2)

	res, err := f.svc.Get(context.Background(), "rt1")

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRooms)
	require.Len(t, res.Photos, 2)
	assert.Equal(t, "https://signed.example/room-types/rt1/a.jpg", res.Photos[0].URL)
	assert.Equal(t, "room-types/rt1/b.jpg", res.Photos[1].Key)
}

func TestRoomTypeService_GetUnknown(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{}, nil)

	_, err := f.svc.Get(context.Background(), "missing")

	assert.True(t, failure.IsKind(err, failure.KindRoomTypeNotFound))
}

func TestRoomTypeService_UploadPhoto(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{ID: "rt1"}, nil)
	f.storage.EXPECT().UploadFile(gomock.Any(), "room-types/rt1", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dir string, _ multipart.File, _ *multipart.FileHeader, name string) (string, error) {
			assert.Regexp(t, `^[0-9a-f-]{36}\.jpg$`, name)

			return dir + "/" + name, nil
		})
	f.repo.EXPECT().AddPhoto(gomock.Any(), "rt1", gomock.Any(), "staff-id").Return(nil)
	f.storage.EXPECT().PresignURL(gomock.Any(), gomock.Any()).Return("https://signed.example/photo", nil)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-id")
	res, err := f.svc.UploadPhoto(ctx, dto.UploadPhotoRequest{Photo: &multipart.FileHeader{Filename: "Lobby.JPG"}}, "rt1")

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Contains(t, res.Key, "room-types/rt1/")
	assert.Equal(t, "https://signed.example/photo", res.URL)
}

func TestRoomTypeService_UploadPhotoRollsBackObject(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.RoomType{ID: "rt1"}, nil)
	f.storage.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("room-types/rt1/x.png", nil)
	f.repo.EXPECT().AddPhoto(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	f.storage.EXPECT().DeleteFile(gomock.Any(), "room-types/rt1/x.png").Return(nil)

	_, err := f.svc.UploadPhoto(context.Background(), dto.UploadPhotoRequest{Photo: &multipart.FileHeader{Filename: "x.png"}}, "rt1")

	assert.True(t, failure.IsKind(err, failure.KindStorageUnavailable))
}

func TestRoomTypeService_DeletePhoto(t *testing.T) {
	tests := []struct {
		name      string
		removed   bool
		wantCode  int
		expectDel bool
	}{
		{name: "removes object after row update", removed: true, expectDel: true},
		{name: "unknown photo", removed: false, wantCode: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().RemovePhoto(gomock.Any(), "rt1", "room-types/rt1/a.jpg", gomock.Any()).Return(tt.removed, nil)

			if tt.expectDel {
				f.storage.EXPECT().DeleteFile(gomock.Any(), "room-types/rt1/a.jpg").Return(nil)
			}

			err := f.svc.DeletePhoto(context.Background(), "rt1", "room-types/rt1/a.jpg")

			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}
