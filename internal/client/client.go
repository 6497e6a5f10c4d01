// Package client is a typed HTTP client for the hotel booking API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// APIError is an error envelope returned by the server. It unwraps to the
// domain error kind matching its status code.
type APIError struct {
	Status  int
	Message string
	Details any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Unwrap returns the domain error kind of the status code.
func (e *APIError) Unwrap() error {
	return KindOf(e.Status)
}

// KindOf maps an HTTP status to a domain error kind.
func KindOf(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusTooManyRequests:
		return domain.ErrAuth
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusGatewayTimeout:
		return domain.ErrTimeout
	default:
		return domain.ErrRepository
	}
}

// Client talks to the API under baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client. A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// RegisterInput holds registration data.
type RegisterInput struct {
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate exchanges credentials for the caller's identity and an access
// token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error) {
	var resp struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return domain.Identity{}, "", err
	}
	return resp.User.Identity(), resp.AccessToken, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRooms returns the catalog.
func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := c.do(ctx, http.MethodGet, "/api/v1/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListRoomTypes returns the distinct room types.
func (c *Client) ListRoomTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := c.do(ctx, http.MethodGet, "/api/v1/rooms/types", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// ListAvailableRooms returns rooms of roomType free for the whole stay. An
// empty roomType means any type.
func (c *Client) ListAvailableRooms(ctx context.Context, roomType string, checkIn, checkOut domain.Date) ([]domain.Room, error) {
	query := url.Values{}
	query.Set("check_in", checkIn.String())
	query.Set("check_out", checkOut.String())
	if roomType != "" {
		query.Set("type", roomType)
	}

	var rooms []domain.Room
	if err := c.do(ctx, http.MethodGet, "/api/v1/rooms/available?"+query.Encode(), nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

type createBookingRequest struct {
	RoomID      string      `json:"room_id"`
	CheckIn     domain.Date `json:"check_in_date"`
	CheckOut    domain.Date `json:"check_out_date"`
	NumAdults   int         `json:"num_adults"`
	NumChildren int         `json:"num_children"`
}

// CreateBooking books roomID and returns the stored booking with its
// confirmation code.
func (c *Client) CreateBooking(ctx context.Context, roomID string, details domain.BookingDetails) (*domain.Booking, error) {
	req := createBookingRequest{
		RoomID:      roomID,
		CheckIn:     details.CheckIn,
		CheckOut:    details.CheckOut,
		NumAdults:   details.NumAdults,
		NumChildren: details.NumChildren,
	}

	var b domain.Booking
	if err := c.do(ctx, http.MethodPost, "/api/v1/bookings", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListMyBookings returns the caller's bookings, newest first.
func (c *Client) ListMyBookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CancelBooking cancels the booking with id.
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/bookings/"+url.PathEscape(id), nil, nil)
}

// FindByConfirmationCode looks a booking up by its confirmation code.
func (c *Client) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	var b domain.Booking
	if err := c.do(ctx, http.MethodGet, "/api/v1/bookings/code/"+url.PathEscape(code), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// do sends a JSON request and decodes the {"data": ...} envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrTimeout, err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
