package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"saxonmahar/yoga-ai/internal/config"
	"saxonmahar/yoga-ai/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrMalformedCallback  = errors.New("malformed payment callback payload")
	ErrPaymentNotVerified = errors.New("payment signature verification failed")
)

// signedFieldNames is the canonical field ordering the gateway signs on
// initiation.
const signedFieldNames = "total_amount,transaction_uuid,product_code"

// PaymentRequest is the signed form payload the client submits to the
// gateway, plus the gateway URL to post it to.
type PaymentRequest struct {
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount"`
	TotalAmount           string `json:"total_amount"`
	TransactionUUID       string `json:"transaction_uuid"`
	ProductCode           string `json:"product_code"`
	ProductServiceCharge  string `json:"product_service_charge"`
	ProductDeliveryCharge string `json:"product_delivery_charge"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
	SignedFieldNames      string `json:"signed_field_names"`
	Signature             string `json:"signature"`
	GatewayURL            string `json:"gateway_url"`
	PlanName              string `json:"plan_name"`
}

// VerificationResult is the outcome of a callback verification.
type VerificationResult struct {
	Verified        bool   `json:"verified"`
	Status          string `json:"status,omitempty"`
	TransactionUUID string `json:"transaction_uuid,omitempty"`
	TotalAmount     string `json:"total_amount,omitempty"`
}

// PaymentService signs outgoing payment requests and verifies gateway
// callbacks.
type PaymentService interface {
	Initiate(ctx context.Context, amount float64, planName string) (*PaymentRequest, error)
	Verify(ctx context.Context, userID primitive.ObjectID, encodedPayload string) (*VerificationResult, error)
}

type paymentService struct {
	cfg      config.PaymentConfig
	userRepo repository.UserRepository
}

// NewPaymentService creates a new instance of paymentService.
func NewPaymentService(cfg config.PaymentConfig, userRepo repository.UserRepository) PaymentService {
	if cfg.Secret == "" {
		panic("payment secret cannot be empty") // Critical configuration
	}
	return &paymentService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// Initiate builds a signed payment request. Transaction identifiers are
// random UUIDs, so concurrent initiations can never collide.
func (s *paymentService) Initiate(ctx context.Context, amount float64, planName string) (*PaymentRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	totalAmount := formatAmount(amount)
	transactionUUID := uuid.NewString()

	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		totalAmount, transactionUUID, s.cfg.ProductCode)

	return &PaymentRequest{
		Amount:                totalAmount,
		TaxAmount:             "0",
		TotalAmount:           totalAmount,
		TransactionUUID:       transactionUUID,
		ProductCode:           s.cfg.ProductCode,
		ProductServiceCharge:  "0",
		ProductDeliveryCharge: "0",
		SuccessURL:            s.cfg.SuccessURL,
		FailureURL:            s.cfg.FailureURL,
		SignedFieldNames:      signedFieldNames,
		Signature:             s.sign(message),
		GatewayURL:            s.cfg.GatewayURL,
		PlanName:              planName,
	}, nil
}

// Verify decodes the gateway's base64 JSON callback, recomputes the HMAC
// over the gateway-declared field list and compares it in constant time.
// A COMPLETE, verified payment upgrades the paying user to premium.
func (s *paymentService) Verify(ctx context.Context, userID primitive.ObjectID, encodedPayload string) (*VerificationResult, error) {
	payload, err := decodeCallback(encodedPayload)
	if err != nil {
		return nil, err
	}

	declared, ok := payload["signed_field_names"]
	if !ok || declared == "" {
		return nil, ErrMalformedCallback
	}
	provided, ok := payload["signature"]
	if !ok || provided == "" {
		return nil, ErrMalformedCallback
	}

	fields := strings.Split(declared, ",")
	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		pairs = append(pairs, field+"="+payload[field])
	}
	expected := s.sign(strings.Join(pairs, ","))

	result := &VerificationResult{
		Verified:        hmac.Equal([]byte(expected), []byte(provided)),
		Status:          payload["status"],
		TransactionUUID: payload["transaction_uuid"],
		TotalAmount:     payload["total_amount"],
	}

	if result.Verified && strings.EqualFold(result.Status, "COMPLETE") && userID != primitive.NilObjectID {
		if err := s.userRepo.SetPremium(ctx, userID, true); err != nil {
			log.Printf("ERROR: verified payment but failed to mark user %s premium: %v", userID.Hex(), err)
		}
	}

	return result, nil
}

func (s *paymentService) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.Secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// decodeCallback flattens the callback JSON into strings, preserving the
// exact numeric formatting the gateway signed.
func decodeCallback(encoded string) (map[string]string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(strings.TrimSpace(encoded)); err != nil {
			return nil, ErrMalformedCallback
		}
	}

	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.UseNumber()

	var parsed map[string]any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, ErrMalformedCallback
	}

	payload := make(map[string]string, len(parsed))
	for k, v := range parsed {
		switch value := v.(type) {
		case string:
			payload[k] = value
		case json.Number:
			payload[k] = value.String()
		case bool:
			payload[k] = strconv.FormatBool(value)
		default:
			continue // nested values are never part of the signed fields
		}
	}
	return payload, nil
}

// formatAmount renders an amount without a trailing ".0" for whole values.
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
