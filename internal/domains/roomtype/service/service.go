package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"aspen/config"
	"aspen/infras/otel"
	"aspen/infras/postgres"
	"aspen/infras/s3"
	roomModel "aspen/internal/domains/room/model"
	roomRepo "aspen/internal/domains/room/repository"
	"aspen/internal/domains/roomtype/model"
	"aspen/internal/domains/roomtype/model/dto"
	"aspen/internal/domains/roomtype/repository"
	"aspen/shared"
	"aspen/shared/cache"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoomType    = "room_type:get"
	cacheGetAllRoomType = "room_type:gets"
	cacheCountRoomType  = "room_type:count"
	cacheRoom           = "room:"
)

type RoomType interface {
	Create(ctx context.Context, req dto.CreateRoomTypeRequest) (dto.RoomTypeResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomTypesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomTypeResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomTypeRequest, id string) error
	Delete(ctx context.Context, id string) error
	UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (dto.Photo, error)
	DeletePhoto(ctx context.Context, id, key string) error
}

type serviceImpl struct {
	repo       repository.RoomType
	roomRepo   roomRepo.Room
	transactor postgres.Transactor
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	s3         s3.S3
}

func New(
	repo repository.RoomType,
	roomRepo roomRepo.Room,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) RoomType {
	return &serviceImpl{
		repo:       repo,
		roomRepo:   roomRepo,
		transactor: transactor,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		s3:         s3,
	}
}

// Create stores the room type together with its physical rooms in one transaction.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomTypeRequest) (res dto.RoomTypeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	roomType := req.ToModel(user)

	rooms := make([]roomModel.Room, len(req.Rooms))
	for i, room := range req.Rooms {
		rooms[i] = room.ToModel(roomType.HotelID, roomType.ID, user)
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, roomType); err != nil {
			return err //nolint:wrapcheck
		}

		if len(rooms) == 0 {
			return nil
		}

		return s.roomRepo.InsertBulkTx(ctx, tx, rooms) //nolint:wrapcheck
	})
	if err != nil {
		switch {
		case shared.IsUniqueViolation(err):
			return res, failure.Conflict("room type name or room number already exists in this hotel") // nolint:wrapcheck
		case shared.IsFkViolation(err):
			return res, failure.NotFound("hotel not found") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create room type")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to create room type: %w", err)) // nolint:wrapcheck
	}

	res.FromModel(roomType)
	res.TotalRooms = len(rooms)

	s.invalidate(ctx, roomType.ID)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomTypesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoomType, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		if res, err = s.getAll(ctx, req, filter); err != nil {
			return res, err
		}

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save room types to cache")
			}
		}()
	} else {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room types")
	}

	// presigned URLs expire, so they are resolved on every read
	for i := range res.RoomTypes {
		if err = res.RoomTypes[i].ResolvePhotos(ctx, s.s3); err != nil {
			log.Error().Err(err).Msg("failed to presign room type photos")

			return res, fmt.Errorf("failed to presign room type photos: %w", err)
		}
	}

	return res, nil
}

func (s *serviceImpl) getAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomTypesResponse, err error) {
	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count room types")

		return res, fmt.Errorf("failed to count room types: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room types")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to get room types: %w", err)) // nolint:wrapcheck
	}

	res.FromModels(models, total, req.Limit)

	for i := range res.RoomTypes {
		if res.RoomTypes[i].TotalRooms, err = s.roomRepo.CountByRoomType(ctx, res.RoomTypes[i].ID); err != nil {
			log.Error().Err(err).Msg("failed to count rooms of room type")

			return res, failure.StorageUnavailable(fmt.Errorf("failed to count rooms: %w", err)) // nolint:wrapcheck
		}
	}

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoomType, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count room types")

		return res, failure.StorageUnavailable(fmt.Errorf("failed to count room types: %w", err)) // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room type count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomTypeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(cacheGetRoomType, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		roomType, err := s.get(ctx, id)
		if err != nil {
			return res, err
		}

		res.FromModel(roomType)

		if res.TotalRooms, err = s.roomRepo.CountByRoomType(ctx, id); err != nil {
			log.Error().Err(err).Msg("failed to count rooms of room type")

			return res, failure.StorageUnavailable(fmt.Errorf("failed to count rooms: %w", err)) // nolint:wrapcheck
		}

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save room type to cache")
			}
		}()
	} else {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room type")
	}

	if err = res.ResolvePhotos(ctx, s.s3); err != nil {
		log.Error().Err(err).Msg("failed to presign room type photos")

		return res, fmt.Errorf("failed to presign room type photos: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomTypeRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.Update")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if _, err = s.get(ctx, id); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.Update(ctx, req.Fields(user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		if shared.IsUniqueViolation(err) {
			return failure.Conflict(fmt.Sprintf("room type %s already exists in this hotel", req.Name)) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update room type")

		return failure.StorageUnavailable(fmt.Errorf("failed to update room type: %w", err)) // nolint:wrapcheck
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.Delete")
	defer scope.End()
	defer scope.TraceIfError(&err)

	roomType, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		if shared.IsFkViolation(err) {
			return failure.Conflict("room type still has rooms or bookings") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to delete room type")

		return failure.StorageUnavailable(fmt.Errorf("failed to delete room type: %w", err)) // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		for _, key := range roomType.Photos {
			if err := s.s3.DeleteFile(c, key); err != nil {
				log.Error().Err(err).Str("key", key).Msg("failed to delete room type photo")
			}
		}
	}()

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (res dto.Photo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.UploadPhoto")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if _, err = s.get(ctx, id); err != nil {
		return res, err
	}

	fileName := uuid.NewString() + strings.ToLower(path.Ext(req.Photo.Filename))

	key, err := s.s3.UploadFile(ctx, path.Join(model.PhotoDirectory, id), req.PhotoFile, req.Photo, fileName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room type photo")

		return res, failure.InternalError(fmt.Errorf("failed to upload photo: %w", err)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.AddPhoto(ctx, id, key, user); err != nil {
		log.Error().Err(err).Msg("failed to add room type photo")

		if delErr := s.s3.DeleteFile(context.WithoutCancel(ctx), key); delErr != nil {
			log.Error().Err(delErr).Str("key", key).Msg("failed to remove orphaned photo")
		}

		return res, failure.StorageUnavailable(fmt.Errorf("failed to add photo: %w", err)) // nolint:wrapcheck
	}

	res.Key = key

	if res.URL, err = s.s3.PresignURL(ctx, key); err != nil {
		log.Error().Err(err).Msg("failed to presign room type photo")

		return res, fmt.Errorf("failed to presign photo: %w", err)
	}

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) DeletePhoto(ctx context.Context, id, key string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room_type.DeletePhoto")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	removed, err := s.repo.RemovePhoto(ctx, id, key, user)
	if err != nil {
		log.Error().Err(err).Msg("failed to remove room type photo")

		return failure.StorageUnavailable(fmt.Errorf("failed to remove photo: %w", err)) // nolint:wrapcheck
	}

	if !removed {
		return failure.NotFound("photo not found") // nolint:wrapcheck
	}

	if err = s.s3.DeleteFile(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete room type photo from storage")
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.RoomType, error) {
	roomType, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room type")

		return roomType, failure.StorageUnavailable(fmt.Errorf("failed to get room type: %w", err)) // nolint:wrapcheck
	}

	if roomType.ID == constant.Empty {
		return roomType, failure.RoomTypeNotFound(id) // nolint:wrapcheck
	}

	return roomType, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoomType, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room type from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoomType)
		shared.InvalidateCaches(c, s.cache, cacheCountRoomType)
		shared.InvalidateCaches(c, s.cache, cacheRoom)
	}()
}
