package reservation

import (
	"net/http"
	"resa/infras/otel"
	"resa/internal/domains/reservation/model"
	"resa/internal/domains/reservation/model/dto"
	"resa/internal/domains/reservation/service"
	"resa/shared/constant"
	gDto "resa/shared/dto"
	"resa/shared/validator"
	"resa/transport/http/middleware"
	"resa/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Reservation
	auth    middleware.Auth
	otel    otel.Otel
}

func New(service service.Reservation, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		// The customer form posts without a session.
		routerGroup.Post("/", handler.CreateReservation)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.auth.Auth)
			protected.Get("/", handler.GetReservations)
			protected.Get("/count", handler.CountReservations)
			protected.Get("/{id}", handler.GetReservationByID)
			protected.Patch("/{id}", handler.UpdateReservation)
			protected.Delete("/{id}", handler.DeleteReservation)
		})
	})
}

// CreateReservation handles the customer reservation form.
// @Summary Create a new reservation
// @Description Create a new reservation with the provided details.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param reservation body dto.CreateReservationRequest true "Reservation details"
// @Success 201 {object} response.Data[dto.ReservationResponse] "Reservation created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [post]
func (handler *Handler) CreateReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	var req dto.CreateReservationRequest
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create reservation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation created successfully for " + req.Phone)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetReservations retrieves all reservations based on query parameters.
// @Summary Get all reservations
// @Description Retrieve all reservations with optional filtering and pagination.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Match name or phone"
// @Param status query string false "Filter by status"
// @Param date query string false "Filter by appointment date (DD/MM/YYYY)"
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservations"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := filtersFromRequest(r)

	reservations, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservations retrieved successfully")

	response.WithJSON(w, http.StatusOK, reservations)
}

// CountReservations counts reservations matching the given filters.
// @Summary Count reservations
// @Description Count reservations with optional filtering.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param search query string false "Match name or phone"
// @Param status query string false "Filter by status"
// @Param date query string false "Filter by appointment date (DD/MM/YYYY)"
// @Success 200 {object} response.Data[int] "Number of reservations"
// @Failure 500 {object} response.Error
// @Router /v1/reservations/count [get]
// @Security BearerAuth
func (handler *Handler) CountReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CountReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	count, err := handler.service.Count(ctx, queryParams, filtersFromRequest(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to count reservations")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservations counted successfully")

	response.WithJSON(w, http.StatusOK, count)
}

// GetReservationByID retrieves a reservation by its ID.
// @Summary Get a reservation by ID
// @Description Retrieve a reservation by its unique identifier.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse] "Reservation details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	reservation, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation retrieved successfully")

	response.WithJSON(w, http.StatusOK, reservation)
}

// UpdateReservation applies a partial update to a reservation and
// returns the post-image.
// @Summary Update a reservation by ID
// @Description Update the details of an existing reservation.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param reservation body dto.UpdateReservationRequest true "Fields to update"
// @Success 200 {object} response.Data[dto.ReservationResponse] "Updated reservation"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.UpdateReservationRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	reservation, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update reservation")

		response.WithError(w, err)

		return
	}

	staff, _ := ctx.Value(constant.ContextKeyStaffID).(string)
	scope.AddEvent("Reservation updated successfully by staff " + staff)

	response.WithJSON(w, http.StatusOK, reservation)
}

// DeleteReservation deletes a reservation by its ID.
// @Summary Delete a reservation by ID
// @Description Delete an existing reservation.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Message "Reservation deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete reservation")

		response.WithError(w, err)

		return
	}

	staff, _ := ctx.Value(constant.ContextKeyStaffID).(string)
	scope.AddEvent("Reservation deleted successfully by staff " + staff)

	response.WithMessage(w, http.StatusOK, "Reservation deleted successfully")
}

func filtersFromRequest(r *http.Request) gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if search := r.URL.Query().Get(constant.RequestParamSearch); search != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{
					Field:    model.FieldName,
					Operator: gDto.FilterOperatorLike,
					Value:    search,
					Table:    model.TableName,
				},
				gDto.Filter{
					Field:    model.FieldPhone,
					Operator: gDto.FilterOperatorLike,
					Value:    search,
					Table:    model.TableName,
				},
			},
		})
	}

	if status := r.URL.Query().Get(model.FieldStatus); status != "" && status != constant.StatusAll {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if date := r.URL.Query().Get(model.FieldDate); date != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldDate,
			Operator: gDto.FilterOperatorEq,
			Value:    date,
			Table:    model.TableName,
		})
	}

	return filterGroup
}
