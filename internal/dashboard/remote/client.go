package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"resa/internal/dashboard"
	"resa/shared/constant"
)

// ErrSessionExpired is returned when the API rejects the client's token.
// Callers surface it to the user instead of retrying.
var ErrSessionExpired = errors.New("session expired, sign in again")

// Client talks to the reservation API on behalf of the dashboard.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type wireReservation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (w wireReservation) toRecord() dashboard.Reservation {
	return dashboard.Reservation{
		ID:        w.ID,
		Name:      w.Name,
		Phone:     w.Phone,
		Date:      w.Date,
		TimeSlot:  w.TimeSlot,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
	}
}

// Login exchanges staff credentials for an access token and returns a
// client authenticated with it.
func Login(ctx context.Context, baseURL, email, password string) (*Client, error) {
	anonymous := New(baseURL, constant.Empty)

	var payload struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}

	err := anonymous.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		return nil, err
	}

	if payload.Data.AccessToken == constant.Empty {
		return nil, errors.New("login response carried no access token")
	}

	return New(baseURL, payload.Data.AccessToken), nil
}

// fetchPageSize is the page size FetchAll requests. The API paginates
// every list response, so the full set is assembled page by page.
const fetchPageSize = 200

// FetchAll retrieves every reservation, newest first. It pages through
// the list endpoint until total_data is satisfied.
func (c *Client) FetchAll(ctx context.Context) ([]dashboard.Reservation, error) {
	var records []dashboard.Reservation

	for page := 1; ; page++ {
		var payload struct {
			Data struct {
				Reservations []wireReservation `json:"reservations"`
				TotalData    int               `json:"total_data"`
			} `json:"data"`
		}

		path := fmt.Sprintf("/v1/reservations?page=%d&limit=%d", page, fetchPageSize)
		if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
			return nil, err
		}

		for _, w := range payload.Data.Reservations {
			records = append(records, w.toRecord())
		}

		if len(payload.Data.Reservations) == 0 || len(records) >= payload.Data.TotalData {
			return records, nil
		}
	}
}

// Fetch retrieves a single reservation by id.
func (c *Client) Fetch(ctx context.Context, id string) (dashboard.Reservation, error) {
	var payload struct {
		Data wireReservation `json:"data"`
	}

	err := c.do(ctx, http.MethodGet, "/v1/reservations/"+id, nil, &payload)
	if err != nil {
		return dashboard.Reservation{}, err
	}

	return payload.Data.toRecord(), nil
}

// Update patches the given fields of a reservation. Fields use the wire
// naming, e.g. "status" or "time_slot".
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/v1/reservations/"+id, fields, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}

		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	if c.token != constant.Empty {
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling reservation api")
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("[do] Failed closing response body")
		}
	}()

	if res.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.New(apiError(res))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}

	return nil
}

func apiError(res *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}

	if err := json.NewDecoder(res.Body).Decode(&payload); err == nil && payload.Error != constant.Empty {
		return payload.Error
	}

	return fmt.Sprintf("reservation api returned status %d", res.StatusCode)
}
