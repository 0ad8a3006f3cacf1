package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/enroll/handler"
	"github.com/jacentio/enroll/store"
)

// mockAPI is a mock implementation of store.API for testing.
type mockAPI struct {
	transactWriteItemsFunc func(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	getItemFunc            func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func (m *mockAPI) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if m.transactWriteItemsFunc != nil {
		return m.transactWriteItemsFunc(ctx, params, optFns...)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (m *mockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockAPI) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockAPI) DescribeTable(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func newHandler(mock *mockAPI) *handler.Handler {
	return handler.NewHandler(store.New(mock, store.DefaultConfig()), nil)
}

func registerRequest(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{Body: body}
}

const validBody = `{"name":"Jane Doe","address":"1 Main St","email":"jane@x.com","phone":"5551234567"}`

func decodeEnvelope(t *testing.T, body string) map[string]string {
	t.Helper()
	var envelope map[string]string
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("expected a JSON body, got %q: %v", body, err)
	}
	return envelope
}

func TestHandleRegister_Success(t *testing.T) {
	h := newHandler(&mockAPI{})

	resp, err := h.HandleRegister(context.Background(), registerRequest(validBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Error("expected permissive CORS header")
	}

	envelope := decodeEnvelope(t, resp.Body)
	if envelope["message"] != "Customer details saved successfully" {
		t.Errorf("unexpected message %q", envelope["message"])
	}
	if envelope["customerId"] == "" {
		t.Error("expected a non-empty customerId")
	}
}

func TestHandleRegister_DuplicatePhone(t *testing.T) {
	h := newHandler(&mockAPI{
		transactWriteItemsFunc: func(_ context.Context, _ *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
				},
			}
		},
	})

	resp, err := h.HandleRegister(context.Background(), registerRequest(validBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp.Body)
	if envelope["message"] != "Phone number already exists" {
		t.Errorf("expected conflict message, got %q", envelope["message"])
	}
	if envelope["customerId"] != "" {
		t.Errorf("expected no customerId on conflict, got %q", envelope["customerId"])
	}
}

func TestHandleRegister_StoreFailure(t *testing.T) {
	h := newHandler(&mockAPI{
		transactWriteItemsFunc: func(_ context.Context, _ *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, errors.New("rate exceeded")
		},
	})

	resp, err := h.HandleRegister(context.Background(), registerRequest(validBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp.Body)
	if envelope["message"] != "rate exceeded" {
		t.Errorf("expected the store error verbatim, got %q", envelope["message"])
	}
}

func TestHandleRegister_MalformedBody(t *testing.T) {
	h := newHandler(&mockAPI{
		transactWriteItemsFunc: func(_ context.Context, _ *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
			t.Fatal("no transaction may be submitted for an unparsable body")
			return nil, nil
		},
	})

	resp, err := h.HandleRegister(context.Background(), registerRequest("{not json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Error("expected permissive CORS header")
	}

	// Parse failures respond with the raw error string, not a JSON envelope.
	if resp.Body == "" || json.Valid([]byte(resp.Body)) {
		t.Errorf("expected a raw error-message body, got %q", resp.Body)
	}
}

func TestHandleLookup_ByPhone(t *testing.T) {
	h := newHandler(&mockAPI{
		getItemFunc: func(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
				"customerId": &types.AttributeValueMemberS{Value: "cid-1"},
				"name":       &types.AttributeValueMemberS{Value: "Jane Doe"},
				"phone":      &types.AttributeValueMemberS{Value: "5551234567"},
			}}, nil
		},
	})

	resp, err := h.HandleLookup(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"phone": "5551234567"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	var customer store.Customer
	if err := json.Unmarshal([]byte(resp.Body), &customer); err != nil {
		t.Fatalf("expected a customer JSON body: %v", err)
	}
	if customer.CustomerID != "cid-1" {
		t.Errorf("expected customerId 'cid-1', got %q", customer.CustomerID)
	}
}

func TestHandleLookup_NotFound(t *testing.T) {
	h := newHandler(&mockAPI{})

	resp, err := h.HandleLookup(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"phone": "5550000000"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp.Body)
	if envelope["message"] != "Customer not found" {
		t.Errorf("unexpected message %q", envelope["message"])
	}
}

func TestHandleLookup_MissingParameters(t *testing.T) {
	h := newHandler(&mockAPI{})

	resp, err := h.HandleLookup(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
}
