package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"resa/config"
	"resa/infras/otel/mocks"
	reservationMocks "resa/internal/domains/reservation/mocks"
	"resa/internal/domains/reservation/model"
	"resa/internal/domains/reservation/model/dto"
	"resa/internal/domains/reservation/service"
	eventMocks "resa/internal/events/mocks"
	messagingMocks "resa/internal/messaging/mocks"
	cacheMocks "resa/shared/cache/mocks"
	"resa/shared/constant"
	gDto "resa/shared/dto"
	gModel "resa/shared/model"
	"resa/shared/timezone"
)

type serviceMocks struct {
	repo      *reservationMocks.MockReservation
	cache     *cacheMocks.MockRedisCache
	publisher *eventMocks.MockPublisher
	queue     *messagingMocks.MockQueue
}

func newService(t *testing.T) (service.Reservation, serviceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := serviceMocks{
		repo:      reservationMocks.NewMockReservation(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
		queue:     messagingMocks.NewMockQueue(ctrl),
	}

	svc := service.New(m.repo, &config.Config{}, m.cache, mocks.NewOtel(), m.publisher, m.queue)

	return svc, m
}

// allowAsync covers the best-effort goroutine that follows a successful
// write: feed publish, outbound enqueue and cache invalidation.
func allowAsync(m serviceMocks) {
	m.publisher.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.publisher.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.publisher.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func validReservation() model.Reservation {
	return model.Reservation{
		ID:       "res-id-123",
		Name:     "Ana Silva",
		Phone:    "812000001",
		Date:     "10/09/2026",
		TimeSlot: constant.TimeSlots[0],
		Status:   constant.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "customer",
			ModifiedBy: "customer",
		},
	}
}

func TestReservationService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateReservationRequest
		setupMock func(m serviceMocks)
		wantErr   bool
	}{
		{
			name: "successful creation",
			req: dto.CreateReservationRequest{
				Name:     "Ana Silva",
				Phone:    "812000001",
				Date:     "10/09/2026",
				TimeSlot: constant.TimeSlots[0],
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				allowAsync(m)
			},
			wantErr: false,
		},
		{
			name: "invalid date format",
			req: dto.CreateReservationRequest{
				Name:     "Ana Silva",
				Phone:    "812000001",
				Date:     "2026-09-10",
				TimeSlot: constant.TimeSlots[0],
			},
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
		},
		{
			name: "repository failure",
			req: dto.CreateReservationRequest{
				Name:     "Ana Silva",
				Phone:    "812000001",
				Date:     "10/09/2026",
				TimeSlot: constant.TimeSlots[0],
			},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("insert failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.setupMock(m)

			res, err := svc.Create(context.Background(), tt.req)

			// Let the best-effort goroutine run before the controller
			// checks expectations.
			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, res.ID)
			assert.Equal(t, constant.StatusPending, res.Status)
			assert.Equal(t, tt.req.Phone, res.Phone)
		})
	}
}

func TestReservationService_GetAll(t *testing.T) {
	t.Run("drops records with unrecognized statuses", func(t *testing.T) {
		svc, m := newService(t)

		valid := validReservation()
		corrupt := validReservation()
		corrupt.ID = "res-id-456"
		corrupt.Status = "Archived"

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		m.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
		m.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Reservation{valid, corrupt}, nil)
		allowAsync(m)

		res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
		assert.Len(t, res.Reservations, 1)
		assert.Equal(t, valid.ID, res.Reservations[0].ID)
		assert.Equal(t, 2, res.TotalData)
	})

	t.Run("serves from cache when possible", func(t *testing.T) {
		svc, m := newService(t)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
		assert.NoError(t, err)
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		svc, m := newService(t)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		m.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down"))

		_, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
		assert.Error(t, err)
	})
}

func TestReservationService_Get(t *testing.T) {
	t.Run("returns the reservation", func(t *testing.T) {
		svc, m := newService(t)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validReservation(), nil)
		allowAsync(m)

		res, err := svc.Get(context.Background(), "res-id-123")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
		assert.Equal(t, "res-id-123", res.ID)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		svc, m := newService(t)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := svc.Get(context.Background(), "missing")
		assert.Error(t, err)
	})
}

func TestReservationService_Update(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.UpdateReservationRequest
		setupMock func(m serviceMocks)
		wantErr   bool
	}{
		{
			name: "successful status update returns the post-image",
			req:  dto.UpdateReservationRequest{Status: constant.StatusConfirmed},
			setupMock: func(m serviceMocks) {
				updated := validReservation()
				updated.Status = constant.StatusConfirmed

				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				m.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(updated, nil)

				allowAsync(m)
			},
			wantErr: false,
		},
		{
			name:      "empty update is rejected",
			req:       dto.UpdateReservationRequest{},
			setupMock: func(m serviceMocks) {},
			wantErr:   true,
		},
		{
			name: "unknown reservation",
			req:  dto.UpdateReservationRequest{Status: constant.StatusConfirmed},
			setupMock: func(m serviceMocks) {
				m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.setupMock(m)

			res, err := svc.Update(context.Background(), tt.req, "res-id-123")

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, constant.StatusConfirmed, res.Status)
		})
	}
}

func TestReservationService_Delete(t *testing.T) {
	t.Run("deletes an existing reservation", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		m.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		allowAsync(m)

		err := svc.Delete(context.Background(), "res-id-123")

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		svc, m := newService(t)

		m.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := svc.Delete(context.Background(), "missing")
		assert.Error(t, err)
	})
}
