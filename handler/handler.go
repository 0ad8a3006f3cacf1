// Package handler provides Lambda handlers for customer registration.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/enroll/store"
)

// Response messages fixed by the public API contract.
const (
	savedMessage    = "Customer details saved successfully"
	conflictMessage = "Phone number already exists"
	notFoundMessage = "Customer not found"
)

// registrationRequest is the inbound JSON body.
type registrationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// registrationResponse is the outbound JSON envelope for registration.
type registrationResponse struct {
	Message    string `json:"message"`
	CustomerID string `json:"customerId,omitempty"`
}

// Handler serves customer registration and lookup requests.
type Handler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(s *store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleRegister registers a customer from an API Gateway proxy request.
// This function is designed to be used as an AWS Lambda handler.
//
// Success returns 200 with the new customerId. A phone conflict, any other
// store failure, and an unparsable body all return 400; only the parse
// failure responds with a raw (non-JSON) message body.
func (h *Handler) HandleRegister(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var payload registrationRequest
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		h.logger.Error("failed to parse registration payload", "error", err)
		return respondRaw(http.StatusBadRequest, err.Error()), nil
	}

	customerID, err := h.store.CreateCustomer(ctx, payload.Name, payload.Address, payload.Email, payload.Phone)
	if err != nil {
		if errors.Is(err, store.ErrPhoneExists) {
			h.logger.Info("registration rejected, phone already registered",
				"phone", payload.Phone,
			)
			return respondJSON(http.StatusBadRequest, registrationResponse{Message: conflictMessage}), nil
		}
		h.logger.Error("registration transaction failed",
			"phone", payload.Phone,
			"error", err,
		)
		return respondJSON(http.StatusBadRequest, registrationResponse{Message: err.Error()}), nil
	}

	h.logger.Info("customer registered",
		"customerId", customerID,
		"phone", payload.Phone,
	)

	return respondJSON(http.StatusOK, registrationResponse{
		Message:    savedMessage,
		CustomerID: customerID,
	}), nil
}

// HandleLookup resolves a customer by the "phone" or "name" query string
// parameter and returns the full customer record.
func (h *Handler) HandleLookup(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var (
		customer *store.Customer
		err      error
	)

	switch {
	case req.QueryStringParameters["phone"] != "":
		customer, err = h.store.GetCustomerByPhone(ctx, req.QueryStringParameters["phone"])
	case req.QueryStringParameters["name"] != "":
		customer, err = h.store.GetCustomerByName(ctx, req.QueryStringParameters["name"])
	default:
		return respondJSON(http.StatusBadRequest, registrationResponse{
			Message: "phone or name query parameter is required",
		}), nil
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondJSON(http.StatusNotFound, registrationResponse{Message: notFoundMessage}), nil
		}
		h.logger.Error("customer lookup failed", "error", err)
		return respondJSON(http.StatusBadRequest, registrationResponse{Message: err.Error()}), nil
	}

	return respondJSON(http.StatusOK, customer), nil
}

// respondJSON builds a response with a JSON-encoded body and the permissive
// CORS header every response carries.
func respondJSON(statusCode int, body any) events.APIGatewayProxyResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		// Response types marshal unconditionally; treat failure as a bug.
		panic(err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(encoded),
	}
}

// respondRaw builds a response whose body is the message itself.
func respondRaw(statusCode int, message string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
		},
		Body: message,
	}
}
