package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"aspen/infras/metrics"
	"aspen/infras/stripe"
	"aspen/internal/domains/booking/event"
	"aspen/internal/domains/booking/model"
	"aspen/internal/domains/booking/model/dto"
	roomModel "aspen/internal/domains/room/model"
	"aspen/shared"
	"aspen/shared/constant"
	"aspen/shared/failure"
	gModel "aspen/shared/model"
	"aspen/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Create reserves inventory and opens a payment intent. The room type row is
// locked for the whole check-and-insert so concurrent bookings of one type
// cannot both see the same free rooms.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	defer func() {
		if err != nil {
			metrics.ObserveBooking(metrics.OutcomeRejected)
		}
	}()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	checkIn, checkOut, err := dto.ParseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var booking model.Booking

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		roomType, err := s.roomTypeRepo.GetForUpdateTx(ctx, tx, req.RoomTypeID)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock room type")

			return failure.StorageUnavailable(fmt.Errorf("failed to lock room type: %w", err)) // nolint:wrapcheck
		}

		if roomType.ID == constant.Empty {
			return failure.RoomTypeNotFound(req.RoomTypeID) // nolint:wrapcheck
		}

		if guests := req.NumberOfAdults + req.NumberOfChildren; guests > roomType.MaxOccupancy*req.NumberOfRooms {
			return failure.BadRequestFromString(fmt.Sprintf("%d guests exceed the occupancy of %d %s room(s)", guests, req.NumberOfRooms, roomType.Name)) // nolint:wrapcheck
		}

		avail, err := s.engine.ComputeTx(ctx, tx, roomType.ID, checkIn, checkOut)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if avail.Available < req.NumberOfRooms {
			return failure.InsufficientInventory(req.NumberOfRooms, avail.Available) // nolint:wrapcheck
		}

		breakdown, err := s.calculator.Price(roomType.PricePerNight, checkIn, checkOut, req.NumberOfRooms)
		if err != nil {
			return err //nolint:wrapcheck
		}

		guest, err := s.guestRepo.UpsertByEmailTx(ctx, tx, req.Guest.ToModel(user))
		if err != nil {
			if failure.IsKind(err, failure.KindGuestLookupConflict) {
				return err //nolint:wrapcheck
			}

			log.Error().Err(err).Msg("failed to upsert guest")

			return failure.StorageUnavailable(fmt.Errorf("failed to upsert guest: %w", err)) // nolint:wrapcheck
		}

		bookingID, err := s.newBookingID(ctx, tx)
		if err != nil {
			return err
		}

		booking = model.Booking{
			ID:                 uuid.NewString(),
			BookingID:          bookingID,
			HotelID:            roomType.HotelID,
			GuestID:            guest.ID,
			RoomTypeID:         roomType.ID,
			CheckInDate:        checkIn,
			CheckOutDate:       checkOut,
			NumberOfRooms:      req.NumberOfRooms,
			NumberOfAdults:     req.NumberOfAdults,
			NumberOfChildren:   req.NumberOfChildren,
			TotalPrice:         breakdown.Subtotal,
			TaxAmount:          breakdown.Tax,
			TotalPriceAfterTax: breakdown.Total,
			Currency:           s.cfg.Booking.Currency,
			Status:             model.StatusBooked,
			PaymentStatus:      model.PaymentPending,
			BookingSource:      req.Source(),
			BookingChannel:     req.Channel(),
			GuestName:          guest.Name,
			GuestEmail:         guest.Email,
			RoomTypeName:       roomType.Name,
			Metadata:           gModel.NewMetadata(user),
		}

		if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Msg("failed to insert booking")

			return failure.StorageUnavailable(fmt.Errorf("failed to insert booking: %w", err)) // nolint:wrapcheck
		}

		res.Price.FromBreakdown(breakdown, s.cfg.Booking.Currency)

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("roomTypeID", req.RoomTypeID).Msg("failed to create booking")

		return res, err //nolint:wrapcheck
	}

	metrics.ObserveBooking(metrics.OutcomeCreated)

	go func() {
		s.invalidate(context.WithoutCancel(ctx), booking.BookingID)
	}()

	res.BookingID = booking.BookingID
	res.Status = booking.Status
	res.PaymentStatus = booking.PaymentStatus

	// The booking stays committed when the gateway fails; the sweeper reclaims it.
	intent, err := s.gateway.CreateIntent(ctx, booking.BookingID, booking.TotalPriceAfterTax.Round(2), booking.Currency)
	if err != nil {
		log.Error().Err(err).Str("bookingID", booking.BookingID).Msg("failed to create payment intent")

		return res, failure.PaymentInitiationFailed(err) // nolint:wrapcheck
	}

	res.PaymentIntentID = intent.ID
	res.ClientSecret = intent.ClientSecret

	s.storeReference(ctx, booking.BookingID, intent.ID)

	log.Info().Str("bookingID", booking.BookingID).Str("intentID", intent.ID).Msg("booking created")

	return res, nil
}

func (s *serviceImpl) newBookingID(ctx context.Context, tx *sqlx.Tx) (string, error) {
	for range maxBookingIDAttempts {
		bookingID := model.NewBookingID(s.cfg.Booking.IDPrefix, timezone.Now())

		exists, err := s.repo.BookingIDExistsTx(ctx, tx, bookingID)
		if err != nil {
			log.Error().Err(err).Msg("failed to check booking id")

			return "", failure.StorageUnavailable(fmt.Errorf("failed to check booking id: %w", err)) // nolint:wrapcheck
		}

		if !exists {
			return bookingID, nil
		}
	}

	return "", failure.Conflict("could not allocate a unique booking id") // nolint:wrapcheck
}

func (s *serviceImpl) storeReference(ctx context.Context, bookingID, reference string) {
	fields := map[string]any{
		model.FieldPaymentRef:    reference,
		constant.FieldModifiedAt: timezone.Now(),
	}

	if err := s.repo.Update(ctx, fields, shared.FilterByID(bookingID, model.FieldBookingID, model.TableName)); err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to store payment reference")
	}
}

// ConfirmPayment marks the booking paid. Repeated deliveries of the same
// confirmation are no-ops and publish nothing.
func (s *serviceImpl) ConfirmPayment(ctx context.Context, evt stripe.Event) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ConfirmPayment")
	defer scope.End()
	defer scope.TraceIfError(&err)

	changed, err := s.repo.MarkPaid(ctx, evt.BookingID, evt.Reference)
	if err != nil {
		log.Error().Err(err).Str("bookingID", evt.BookingID).Msg("failed to mark booking paid")

		return failure.StorageUnavailable(fmt.Errorf("failed to mark booking paid: %w", err)) // nolint:wrapcheck
	}

	booking, err := s.get(ctx, evt.BookingID)
	if err != nil {
		return err
	}

	if !changed {
		log.Info().Str("bookingID", evt.BookingID).Str("eventID", evt.ID).Msg("payment already confirmed")

		return nil
	}

	if !evt.AmountPaid.IsZero() && !evt.AmountPaid.Equal(booking.TotalPriceAfterTax.Round(2)) {
		log.Warn().
			Str("bookingID", evt.BookingID).
			Str("paid", evt.AmountPaid.StringFixed(2)).
			Str("expected", booking.TotalPriceAfterTax.StringFixed(2)).
			Msg("paid amount differs from booking total")
	}

	go func() {
		s.invalidate(context.WithoutCancel(ctx), evt.BookingID)
	}()

	// Money for a stay that is no longer held is settled by staff; the guest gets no confirmation.
	if booking.Status != model.StatusBooked {
		log.Warn().
			Str("bookingID", evt.BookingID).
			Str("status", booking.Status).
			Msg("payment received for a booking that is no longer held")

		return nil
	}

	metrics.ObserveBooking(metrics.OutcomeConfirmed)
	s.publish(ctx, event.TypeConfirmed, booking, nil)

	return nil
}

// FailPayment records a failed attempt. The booking keeps its hold until paid
// or swept.
func (s *serviceImpl) FailPayment(ctx context.Context, evt stripe.Event) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.FailPayment")
	defer scope.End()
	defer scope.TraceIfError(&err)

	changed, err := s.repo.MarkPaymentFailed(ctx, evt.BookingID, evt.Reference)
	if err != nil {
		log.Error().Err(err).Str("bookingID", evt.BookingID).Msg("failed to mark payment failed")

		return failure.StorageUnavailable(fmt.Errorf("failed to mark payment failed: %w", err)) // nolint:wrapcheck
	}

	if !changed {
		if _, err = s.get(ctx, evt.BookingID); err != nil {
			return err
		}

		log.Info().Str("bookingID", evt.BookingID).Msg("payment failure ignored")

		return nil
	}

	metrics.ObserveBooking(metrics.OutcomePaymentFail)
	log.Warn().Str("bookingID", evt.BookingID).Str("eventID", evt.ID).Msg("payment failed")

	go func() {
		s.invalidate(context.WithoutCancel(ctx), evt.BookingID)
	}()

	return nil
}

func (s *serviceImpl) CreateCheckoutSession(ctx context.Context, bookingID string) (res dto.CheckoutSessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CreateCheckoutSession")
	defer scope.End()
	defer scope.TraceIfError(&err)

	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return res, err
	}

	if booking.PaymentStatus == model.PaymentPaid {
		return res, failure.Conflict(fmt.Sprintf("booking %s is already paid", bookingID)) // nolint:wrapcheck
	}

	if booking.Status != model.StatusBooked {
		return res, failure.InvalidStatusTransition(bookingID, booking.Status, model.StatusBooked) // nolint:wrapcheck
	}

	item := stripe.LineItem{
		Name: booking.RoomTypeName,
		Description: fmt.Sprintf("%d room(s), %s to %s",
			booking.NumberOfRooms,
			booking.CheckInDate.Format(constant.DateOnlyFormat),
			booking.CheckOutDate.Format(constant.DateOnlyFormat)),
	}

	session, err := s.gateway.CreateSession(ctx, booking.BookingID, booking.TotalPriceAfterTax.Round(2), booking.Currency, item)
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to create checkout session")

		return res, failure.PaymentInitiationFailed(err) // nolint:wrapcheck
	}

	s.storeReference(ctx, booking.BookingID, session.ID)

	res.BookingID = booking.BookingID
	res.SessionID = session.ID
	res.URL = session.URL

	return res, nil
}

// CheckIn pins physical rooms to a booked reservation. Either every requested
// room is pinned or none is.
func (s *serviceImpl) CheckIn(ctx context.Context, bookingID string, req dto.CheckInRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckIn")
	defer scope.End()
	defer scope.TraceIfError(&err)

	roomIDs := dedupe(req.RoomIDs)
	if len(roomIDs) == 0 {
		return res, failure.MissingField("room_ids") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		booking model.Booking
		numbers []string
	)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error

		booking, err = s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		switch booking.Status {
		case model.StatusBooked:
		case model.StatusCheckedOut:
			return failure.AlreadyCheckedOut(bookingID) // nolint:wrapcheck
		default:
			return failure.InvalidStatusTransition(bookingID, booking.Status, model.StatusCheckedIn) // nolint:wrapcheck
		}

		if s.cfg.Booking.RequirePaymentForCheckIn && booking.BookingSource == model.SourceOnline && booking.PaymentStatus != model.PaymentPaid {
			return failure.PaymentPending(bookingID) // nolint:wrapcheck
		}

		if len(roomIDs) > booking.NumberOfRooms {
			return failure.BadRequestFromString(fmt.Sprintf("booking %s holds %d room(s), %d requested", bookingID, booking.NumberOfRooms, len(roomIDs))) // nolint:wrapcheck
		}

		rooms, err := s.roomRepo.GetByIDsForUpdateTx(ctx, tx, roomIDs)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock rooms")

			return failure.StorageUnavailable(fmt.Errorf("failed to lock rooms: %w", err)) // nolint:wrapcheck
		}

		numbers, err = validateRooms(booking, roomIDs, rooms)
		if err != nil {
			return err
		}

		if err := s.repo.AssignRoomsTx(ctx, tx, booking.ID, roomIDs); err != nil {
			log.Error().Err(err).Msg("failed to assign rooms")

			return failure.StorageUnavailable(fmt.Errorf("failed to assign rooms: %w", err)) // nolint:wrapcheck
		}

		if err := s.roomRepo.UpdateStatusTx(ctx, tx, roomIDs, roomModel.StatusBooked, user); err != nil {
			log.Error().Err(err).Msg("failed to occupy rooms")

			return failure.StorageUnavailable(fmt.Errorf("failed to occupy rooms: %w", err)) // nolint:wrapcheck
		}

		return s.setStatus(ctx, tx, &booking, model.StatusCheckedIn, user)
	})
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to check in")

		return res, err //nolint:wrapcheck
	}

	metrics.ObserveBooking(metrics.OutcomeCheckedIn)
	s.publish(ctx, event.TypeCheckedIn, booking, numbers)
	s.invalidateWithRooms(ctx, bookingID)

	return toResponse(booking, numbers), nil
}

// validateRooms checks the locked rooms in request order and returns their numbers.
func validateRooms(booking model.Booking, roomIDs []string, rooms []roomModel.Room) ([]string, error) {
	byID := make(map[string]roomModel.Room, len(rooms))
	for _, room := range rooms {
		byID[room.ID] = room
	}

	numbers := make([]string, 0, len(roomIDs))

	for _, id := range roomIDs {
		room, ok := byID[id]
		if !ok {
			return nil, failure.RoomUnavailable(id, "room does not exist") // nolint:wrapcheck
		}

		if room.RoomTypeID != booking.RoomTypeID {
			return nil, failure.RoomUnavailable(room.RoomNumber, "room belongs to another room type") // nolint:wrapcheck
		}

		if room.Status != roomModel.StatusAvailable {
			return nil, failure.RoomUnavailable(room.RoomNumber, "room is "+room.Status) // nolint:wrapcheck
		}

		numbers = append(numbers, room.RoomNumber)
	}

	slices.Sort(numbers)

	return numbers, nil
}

// CheckOut releases every room pinned to the booking.
func (s *serviceImpl) CheckOut(ctx context.Context, bookingID string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckOut")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		booking model.Booking
		numbers []string
	)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error

		booking, err = s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status == model.StatusCheckedOut {
			return failure.AlreadyCheckedOut(bookingID) // nolint:wrapcheck
		}

		pins, err := s.repo.GetAssignedRoomsTx(ctx, tx, booking.ID)
		if err != nil {
			log.Error().Err(err).Msg("failed to get assigned rooms")

			return failure.StorageUnavailable(fmt.Errorf("failed to get assigned rooms: %w", err)) // nolint:wrapcheck
		}

		// Rooms are pinned only at check-in, so a booking that never checked in has none.
		if len(pins) == 0 {
			return failure.NoRoomsAssigned(bookingID) // nolint:wrapcheck
		}

		if booking.Status != model.StatusCheckedIn {
			return failure.InvalidStatusTransition(bookingID, booking.Status, model.StatusCheckedOut) // nolint:wrapcheck
		}

		roomIDs := make([]string, len(pins))
		numbers = make([]string, len(pins))

		for i, pin := range pins {
			roomIDs[i] = pin.RoomID
			numbers[i] = pin.RoomNumber
		}

		slices.Sort(numbers)

		if err := s.roomRepo.UpdateStatusTx(ctx, tx, roomIDs, roomModel.StatusAvailable, user); err != nil {
			log.Error().Err(err).Msg("failed to release rooms")

			return failure.StorageUnavailable(fmt.Errorf("failed to release rooms: %w", err)) // nolint:wrapcheck
		}

		return s.setStatus(ctx, tx, &booking, model.StatusCheckedOut, user)
	})
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to check out")

		return res, err //nolint:wrapcheck
	}

	metrics.ObserveBooking(metrics.OutcomeCheckedOut)
	s.publish(ctx, event.TypeCheckedOut, booking, numbers)
	s.invalidateWithRooms(ctx, bookingID)

	return toResponse(booking, numbers), nil
}

// Cancel frees the booking's inventory. Refunds are settled outside the system.
func (s *serviceImpl) Cancel(ctx context.Context, bookingID string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(&err)

	booking, err := s.transition(ctx, bookingID, model.StatusCanceled)
	if err != nil {
		return res, err
	}

	if booking.PaymentStatus == model.PaymentPaid {
		log.Warn().Str("bookingID", bookingID).Msg("canceled a paid booking, refund pending")
	}

	metrics.ObserveBooking(metrics.OutcomeCanceled)
	s.publish(ctx, event.TypeCanceled, booking, nil)

	return toResponse(booking, nil), nil
}

// MarkNoShow closes a booking whose guest never arrived. Its nights stay sold.
func (s *serviceImpl) MarkNoShow(ctx context.Context, bookingID string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.MarkNoShow")
	defer scope.End()
	defer scope.TraceIfError(&err)

	booking, err := s.transition(ctx, bookingID, model.StatusNoShow)
	if err != nil {
		return res, err
	}

	metrics.ObserveBooking(metrics.OutcomeNoShow)

	return toResponse(booking, nil), nil
}

// transition moves a booked reservation to a terminal status.
func (s *serviceImpl) transition(ctx context.Context, bookingID, target string) (model.Booking, error) {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var booking model.Booking

	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error

		booking, err = s.lock(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != model.StatusBooked {
			return failure.InvalidStatusTransition(bookingID, booking.Status, target) // nolint:wrapcheck
		}

		return s.setStatus(ctx, tx, &booking, target, user)
	})
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Str("target", target).Msg("failed to change booking status")

		return booking, err //nolint:wrapcheck
	}

	go func() {
		s.invalidate(context.WithoutCancel(ctx), bookingID)
	}()

	return booking, nil
}

// ExpirePending deletes unpaid bookings older than the hold window.
func (s *serviceImpl) ExpirePending(ctx context.Context, now time.Time) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ExpirePending")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cutoff := now.Add(-time.Duration(s.cfg.Booking.HoldMinutes) * time.Minute)

	deleted, err := s.repo.DeleteExpiredPending(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete expired bookings")

		return 0, failure.StorageUnavailable(fmt.Errorf("failed to delete expired bookings: %w", err)) // nolint:wrapcheck
	}

	metrics.ObserveSweep(len(deleted))

	if len(deleted) == 0 {
		return 0, nil
	}

	log.Info().Int("count", len(deleted)).Str("bookingIDs", strings.Join(deleted, ",")).Msg("expired unpaid bookings")

	go func() {
		c := context.WithoutCancel(ctx)

		for _, id := range deleted {
			s.invalidate(c, id)
		}
	}()

	return len(deleted), nil
}

func (s *serviceImpl) lock(ctx context.Context, tx *sqlx.Tx, bookingID string) (model.Booking, error) {
	booking, err := s.repo.GetByBookingIDForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to lock booking")

		return booking, failure.StorageUnavailable(fmt.Errorf("failed to lock booking: %w", err)) // nolint:wrapcheck
	}

	if booking.ID == constant.Empty {
		return booking, failure.BookingNotFound(bookingID) // nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) setStatus(ctx context.Context, tx *sqlx.Tx, booking *model.Booking, status, user string) error {
	if err := s.repo.UpdateStatusTx(ctx, tx, booking.ID, status, user); err != nil {
		log.Error().Err(err).Msg("failed to update booking status")

		return failure.StorageUnavailable(fmt.Errorf("failed to update booking status: %w", err)) // nolint:wrapcheck
	}

	booking.Status = status

	return nil
}

// publish runs detached; a broker outage never fails the transition that triggered it.
func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking, rooms []string) {
	go func() {
		c := context.WithoutCancel(ctx)

		evt := event.FromBooking(eventType, booking)
		evt.RoomNumbers = rooms

		if err := s.publisher.Publish(c, evt); err != nil {
			log.Error().Err(err).Str("bookingID", booking.BookingID).Str("type", eventType).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) invalidateWithRooms(ctx context.Context, bookingID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, bookingID)
		shared.InvalidateCaches(c, s.cache, cacheRoom)
	}()
}

func dedupe(ids []string) []string {
	res := make([]string, 0, len(ids))

	for _, id := range ids {
		if id != constant.Empty && !slices.Contains(res, id) {
			res = append(res, id)
		}
	}

	return res
}
