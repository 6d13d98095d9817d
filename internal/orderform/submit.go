package orderform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sip-sunshine/internal/models"
)

// fallbackError is shown when the server gives no usable message.
const fallbackError = "Failed to create order"

var (
	// ErrSubmitInFlight is returned when a submission is already running.
	ErrSubmitInFlight = errors.New("order submission already in progress")
	// ErrValidationFailed is returned when the draft fails validation;
	// the error list has been handed to the view and nothing was sent.
	ErrValidationFailed = errors.New("order validation failed")
)

type submitter struct {
	endpoint  string
	csrfToken string
	client    *http.Client
}

func newSubmitter(endpoint, csrfToken string) *submitter {
	return &submitter{
		endpoint:  endpoint,
		csrfToken: csrfToken,
		client:    http.DefaultClient,
	}
}

// Submit validates the draft and posts it as a create-order request. On
// validation failure the error list goes to the view and no request is
// made. At most one request is in flight at a time; the submit control is
// re-enabled unconditionally when the request settles.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	draft := c.Draft
	c.mu.Unlock()

	if errs := validateDraft(&draft); len(errs) > 0 {
		c.view.ShowErrors(errs)
		return ErrValidationFailed
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.submitting = true
	c.mu.Unlock()

	c.view.SetSubmitEnabled(false)
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.view.SetSubmitEnabled(true)
	}()

	response, err := c.submitter.post(ctx, buildPayload(&draft))
	if err != nil {
		c.view.ShowErrors([]string{fallbackError})
		return err
	}

	if !response.Success {
		message := response.Message
		if message == "" {
			message = fallbackError
		}
		c.view.ShowErrors([]string{message})
		return fmt.Errorf("order rejected: %s", message)
	}

	c.view.ShowConfirmation(strconv.Itoa(response.OrderID))
	c.Reset()
	return nil
}

// buildPayload serializes the draft into the create-order request body.
func buildPayload(draft *Draft) *models.CreateOrderRequest {
	req := &models.CreateOrderRequest{
		OrderType:       string(draft.OrderType),
		PaymentMethod:   "cash",
		GuestName:       draft.GuestName,
		GuestPhone:      draft.GuestPhone,
		SpecialRequests: draft.SpecialRequests,
		Items: []models.OrderItem{
			{
				ItemID:   draft.Item.ID,
				Name:     draft.Item.Name,
				Price:    draft.Item.Price,
				Quantity: draft.Item.Quantity,
			},
		},
	}

	switch draft.OrderType {
	case Seated:
		if n, err := strconv.Atoi(strings.TrimSpace(draft.TableNumber)); err == nil {
			req.TableNumber = &n
		}
	case Pickup:
		req.PreferredPickupTime = draft.PickupTime
	case Delivery:
		req.GuestEmail = draft.GuestEmail
		req.DeliveryAddress = draft.DeliveryAddress
		req.DeliveryCity = draft.DeliveryCity
		req.DeliveryPostalCode = draft.DeliveryPostalCode
		req.DeliveryCountry = draft.DeliveryCountry
	}

	return req
}

// post sends the request and decodes the response body. Error responses
// carry the same JSON shape, so the body is decoded regardless of status.
func (s *submitter) post(ctx context.Context, payload *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRFToken", s.csrfToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	var response models.CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &response, nil
}
