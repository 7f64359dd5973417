package service

import (
	"context"
	"fmt"
	"resa/config"
	"resa/infras/otel"
	"resa/internal/domains/reservation/model"
	"resa/internal/domains/reservation/model/dto"
	"resa/internal/domains/reservation/repository"
	"resa/internal/events"
	"resa/internal/messaging"
	"resa/shared"
	"resa/shared/cache"
	"resa/shared/constant"
	gDto "resa/shared/dto"
	"resa/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
)

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	Update(ctx context.Context, req dto.UpdateReservationRequest, id string) (dto.ReservationResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Reservation
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	publisher events.Publisher
	queue     messaging.Queue
}

func New(repo repository.Reservation, cfg *config.Config, cache cache.RedisCache, ot otel.Otel, publisher events.Publisher, queue messaging.Queue) Reservation {
	return &serviceImpl{
		repo:      repo,
		cfg:       cfg,
		cache:     cache,
		otel:      ot,
		publisher: publisher,
		queue:     queue,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyStaffID).(string)
	if user == constant.Empty {
		user = "customer"
	}

	reservation, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse reservation request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format, expected DD/MM/YYYY: %v", err)) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, reservation); err != nil {
		log.Error().Err(err).Msg("failed to create reservation")

		return res, fmt.Errorf("failed to create reservation: %w", err)
	}

	// Feed event and outbound message are best-effort; the reservation
	// write above is already durable.
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.publisher.Insert(c, reservation); err != nil {
			log.Error().Err(err).Str("id", reservation.ID).Msg("failed to publish insert event")
		}

		if err := s.queue.Enqueue(c, messaging.OutboundMessage{
			Name:     reservation.Name,
			Phone:    reservation.Phone,
			Date:     reservation.Date,
			TimeSlot: reservation.TimeSlot,
		}); err != nil {
			log.Error().Err(err).Str("id", reservation.ID).Msg("failed to enqueue outbound message")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	}()

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	models = dropInvalid(models)

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	res.FromModel(reservation)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateReservationRequest, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateReservationRequest{}) {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyStaffID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if reservation exists")

		return res, fmt.Errorf("failed to check if reservation exists: %w", err)
	}

	if !exist {
		log.Error().Msg("reservation not found")

		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update reservation")

		return res, fmt.Errorf("failed to update reservation: %w", err)
	}

	// Re-read the post-image so the feed carries exactly what was stored.
	reservation, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload reservation after update")

		return res, fmt.Errorf("failed to reload reservation after update: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.publisher.Update(c, reservation); err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to publish update event")
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	}()

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if reservation exists")

		return fmt.Errorf("failed to check if reservation exists: %w", err)
	}

	if !exist {
		log.Error().Msg("reservation not found")

		return failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete reservation")

		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.publisher.Delete(c, id); err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to publish delete event")
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	}()

	return nil
}

// dropInvalid removes records whose status is outside the known set. A
// bad row is a data error: it is logged and withheld, never coerced to a
// default, and the rest of the batch is served normally.
func dropInvalid(models []model.Reservation) []model.Reservation {
	valid := models[:0]

	for _, reservation := range models {
		if !constant.ValidStatus(reservation.Status) {
			log.Error().
				Str("id", reservation.ID).
				Str("status", reservation.Status).
				Msg("reservation has unrecognized status, dropping from result")

			continue
		}

		valid = append(valid, reservation)
	}

	return valid
}
