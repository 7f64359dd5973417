package validator_test

import (
	"resa/shared/validator"
	"strings"
	"testing"
)

type createRequest struct {
	Name     string `json:"name"      validate:"required,max=100"`
	Phone    string `json:"phone"     validate:"required,phone"`
	Date     string `json:"date"      validate:"required"`
	TimeSlot string `json:"time_slot" validate:"required"`
}

func TestValidatePhoneTag(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{
			name:    "nine digits",
			phone:   "812000001",
			wantErr: false,
		},
		{
			name:    "ten digits",
			phone:   "0812000001",
			wantErr: false,
		},
		{
			name:    "too short",
			phone:   "81200",
			wantErr: true,
		},
		{
			name:    "too long",
			phone:   "081200000123",
			wantErr: true,
		},
		{
			name:    "contains letters",
			phone:   "81200000a",
			wantErr: true,
		},
		{
			name:    "contains separators",
			phone:   "812-000-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.phone, "phone")

			if tt.wantErr && err == nil {
				t.Errorf("expected %q to fail phone validation", tt.phone)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected %q to pass phone validation, got %v", tt.phone, err)
			}
		})
	}
}

func TestValidateFromReader(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "valid request",
			body:    `{"name":"Ana Silva","phone":"812000001","date":"10/09/2026","time_slot":"8h00-11h00"}`,
			wantErr: false,
		},
		{
			name:    "malformed json",
			body:    `{"name":`,
			wantErr: true,
		},
		{
			name:    "missing required field",
			body:    `{"name":"Ana Silva","phone":"812000001","date":"10/09/2026"}`,
			wantErr: true,
		},
		{
			name:    "invalid phone",
			body:    `{"name":"Ana Silva","phone":"nope","date":"10/09/2026","time_slot":"8h00-11h00"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req createRequest
			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	valid := createRequest{
		Name:     "Ana Silva",
		Phone:    "812000001",
		Date:     "10/09/2026",
		TimeSlot: "8h00-11h00",
	}
	if err := validator.ValidateStruct(&valid); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	invalid := createRequest{
		Name:  strings.Repeat("a", 101),
		Phone: "812000001",
	}
	if err := validator.ValidateStruct(&invalid); err == nil {
		t.Error("expected validation error, got nil")
	}
}
