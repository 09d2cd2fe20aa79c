package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"saxonmahar/yoga-ai/internal/config"
	"saxonmahar/yoga-ai/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestPaymentService(userRepo *fakeUserRepo) PaymentService {
	return NewPaymentService(config.PaymentConfig{
		Secret:      "8gBm/:&EnhH.1/q",
		ProductCode: "EPAYTEST",
		GatewayURL:  "https://gateway.example.com/form",
		SuccessURL:  "https://app.example.com/payment/success",
		FailureURL:  "https://app.example.com/payment/failure",
	}, userRepo)
}

// encodeCallback builds the base64 JSON payload the gateway posts back.
func encodeCallback(t *testing.T, fields map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestInitiateSignsCanonicalFields(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo())

	req, err := svc.Initiate(context.Background(), 1000, "Premium Monthly")
	require.NoError(t, err)

	assert.Equal(t, "1000", req.TotalAmount)
	assert.Equal(t, "EPAYTEST", req.ProductCode)
	assert.Equal(t, "total_amount,transaction_uuid,product_code", req.SignedFieldNames)
	assert.NotEmpty(t, req.TransactionUUID)
	assert.NotEmpty(t, req.Signature)
	assert.Equal(t, "https://gateway.example.com/form", req.GatewayURL)

	// Signature must be valid base64.
	_, err = base64.StdEncoding.DecodeString(req.Signature)
	assert.NoError(t, err)
}

func TestInitiateUniqueTransactionIDs(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		req, err := svc.Initiate(context.Background(), 500, "")
		require.NoError(t, err)
		assert.False(t, seen[req.TransactionUUID], "transaction IDs must never repeat")
		seen[req.TransactionUUID] = true
	}
}

func TestInitiateRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo())

	_, err := svc.Initiate(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Initiate(context.Background(), -10, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVerifyRoundTrip(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestPaymentService(userRepo)
	userID := userRepo.add(&domain.User{Email: "payer@example.com"})

	init, err := svc.Initiate(context.Background(), 1000, "Premium")
	require.NoError(t, err)

	callback := encodeCallback(t, map[string]any{
		"transaction_code":   "000AWEO",
		"status":             "COMPLETE",
		"total_amount":       init.TotalAmount,
		"transaction_uuid":   init.TransactionUUID,
		"product_code":       init.ProductCode,
		"signed_field_names": init.SignedFieldNames,
		"signature":          init.Signature,
	})

	result, err := svc.Verify(context.Background(), userID, callback)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "COMPLETE", result.Status)
	assert.Equal(t, init.TransactionUUID, result.TransactionUUID)

	// A verified COMPLETE payment upgrades the user.
	user, err := userRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestPaymentService(userRepo)
	userID := userRepo.add(&domain.User{Email: "payer@example.com"})

	init, err := svc.Initiate(context.Background(), 1000, "Premium")
	require.NoError(t, err)

	callback := encodeCallback(t, map[string]any{
		"status":             "COMPLETE",
		"total_amount":       "1", // tampered
		"transaction_uuid":   init.TransactionUUID,
		"product_code":       init.ProductCode,
		"signed_field_names": init.SignedFieldNames,
		"signature":          init.Signature,
	})

	result, err := svc.Verify(context.Background(), userID, callback)
	require.NoError(t, err)
	assert.False(t, result.Verified)

	user, err := userRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, user.IsPremium, "tampered payment must not upgrade the user")
}

func TestVerifyMutatedSignature(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo())

	init, err := svc.Initiate(context.Background(), 250, "")
	require.NoError(t, err)

	// Flip one character of the signature.
	sig := []byte(init.Signature)
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}

	callback := encodeCallback(t, map[string]any{
		"status":             "COMPLETE",
		"total_amount":       init.TotalAmount,
		"transaction_uuid":   init.TransactionUUID,
		"product_code":       init.ProductCode,
		"signed_field_names": init.SignedFieldNames,
		"signature":          string(sig),
	})

	result, err := svc.Verify(context.Background(), primitive.NilObjectID, callback)
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestVerifyNumericAmountsPreserveFormatting(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo()).(*paymentService)

	// Gateways send total_amount as a JSON number; the signed message must
	// use the exact textual form.
	message := "total_amount=1000,transaction_uuid=tx-1,product_code=EPAYTEST"
	callback := encodeCallback(t, map[string]any{
		"status":             "COMPLETE",
		"total_amount":       1000,
		"transaction_uuid":   "tx-1",
		"product_code":       "EPAYTEST",
		"signed_field_names": signedFieldNames,
		"signature":          svc.sign(message),
	})

	result, err := svc.Verify(context.Background(), primitive.NilObjectID, callback)
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestVerifyMalformedCallbacks(t *testing.T) {
	svc := newTestPaymentService(newFakeUserRepo())

	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"missing signature", encodeCallback(t, map[string]any{
			"status":             "COMPLETE",
			"signed_field_names": signedFieldNames,
		})},
		{"missing signed_field_names", encodeCallback(t, map[string]any{
			"status":    "COMPLETE",
			"signature": "abc",
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), primitive.NilObjectID, tt.payload)
			assert.ErrorIs(t, err, ErrMalformedCallback)
		})
	}
}

func TestVerifyPendingStatusDoesNotUpgrade(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestPaymentService(userRepo)
	userID := userRepo.add(&domain.User{Email: "payer@example.com"})

	init, err := svc.Initiate(context.Background(), 1000, "")
	require.NoError(t, err)

	callback := encodeCallback(t, map[string]any{
		"status":             "PENDING",
		"total_amount":       init.TotalAmount,
		"transaction_uuid":   init.TransactionUUID,
		"product_code":       init.ProductCode,
		"signed_field_names": init.SignedFieldNames,
		"signature":          init.Signature,
	})

	result, err := svc.Verify(context.Background(), userID, callback)
	require.NoError(t, err)
	assert.True(t, result.Verified, "signature itself is valid")

	user, err := userRepo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, user.IsPremium, "only COMPLETE payments upgrade")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000", formatAmount(1000))
	assert.Equal(t, "99.5", formatAmount(99.5))
	assert.Equal(t, "0.01", formatAmount(0.01))
}
