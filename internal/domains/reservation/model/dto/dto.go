package dto

import (
	"resa/internal/domains/reservation/model"
	"resa/shared"
	"resa/shared/constant"
	gDto "resa/shared/dto"
	gModel "resa/shared/model"
	"resa/shared/timezone"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	Name     string `json:"name"      validate:"required,max=100"`
	Phone    string `json:"phone"     validate:"required,phone"`
	Date     string `json:"date"      validate:"required"`
	TimeSlot string `json:"time_slot" validate:"required,oneof=8h00-11h00 11h00-14h00 14h00-17h00 17h00-20h00"`
}

func (c *CreateReservationRequest) ToModel(user string) (model.Reservation, error) {
	if _, err := timezone.Parse(constant.ReservationDateLayout, c.Date); err != nil {
		return model.Reservation{}, err
	}

	return model.Reservation{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Phone:    c.Phone,
		Date:     c.Date,
		TimeSlot: c.TimeSlot,
		Status:   constant.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateReservationRequest struct {
	Name     string `db:"name"      json:"name"      validate:"omitempty,max=100"`
	Phone    string `db:"phone"     json:"phone"     validate:"omitempty,phone"`
	Date     string `db:"date"      json:"date"      validate:"omitempty"`
	TimeSlot string `db:"time_slot" json:"time_slot" validate:"omitempty,oneof=8h00-11h00 11h00-14h00 14h00-17h00 17h00-20h00"`
	Status   string `db:"status"    json:"status"    validate:"omitempty,oneof=Pending Confirmed Canceled 'Not Responding'"`
}

type ReservationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Status   string `json:"status"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.Name = model.Name
	r.Phone = model.Phone
	r.Date = model.Date
	r.TimeSlot = model.TimeSlot
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
