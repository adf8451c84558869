package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu       sync.Mutex
	sent     []string // recipients, in order
	lastBody string
	fail     bool
}

func (s *stubSender) Send(ctx context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("twilio unavailable")
	}
	s.sent = append(s.sent, to)
	s.lastBody = body
	return nil
}

func newOTPFixture() (*OTPService, *stubSender) {
	sender := &stubSender{}
	return NewOTPService(NewMemoryCodeStore(), sender, "+91"), sender
}

func TestGenerateThenVerify(t *testing.T) {
	otp, sender := newOTPFixture()
	ctx := context.Background()

	code, err := otp.Generate(ctx, "9999999999")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, []string{"+919999999999"}, sender.sent)
	assert.Contains(t, sender.lastBody, code)

	require.NoError(t, otp.Verify(ctx, "9999999999", code))

	// The code was consumed; a replay must fail.
	err = otp.Verify(ctx, "9999999999", code)
	assert.ErrorIs(t, err, models.ErrCodeNotFound)
}

func TestVerifyWrongCodeKeepsEntry(t *testing.T) {
	otp, _ := newOTPFixture()
	ctx := context.Background()

	code, err := otp.Generate(ctx, "9999999999")
	require.NoError(t, err)

	err = otp.Verify(ctx, "9999999999", "000000")
	if code == "000000" {
		t.Skip("generated code collided with the deliberately wrong guess")
	}
	assert.ErrorIs(t, err, models.ErrCodeInvalid)

	// A later attempt with the right code still succeeds.
	assert.NoError(t, otp.Verify(ctx, "9999999999", code))
}

func TestGenerateOverwritesPendingCode(t *testing.T) {
	otp, _ := newOTPFixture()
	ctx := context.Background()

	first, err := otp.Generate(ctx, "9999999999")
	require.NoError(t, err)
	second, err := otp.Generate(ctx, "9999999999")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, otp.Verify(ctx, "9999999999", first), models.ErrCodeInvalid)
	}
	assert.NoError(t, otp.Verify(ctx, "9999999999", second))
}

func TestGenerateNormalizesPhoneForVerify(t *testing.T) {
	otp, _ := newOTPFixture()
	ctx := context.Background()

	code, err := otp.Generate(ctx, "99999 99999")
	require.NoError(t, err)

	// Verification with the already-normalized form hits the same entry.
	assert.NoError(t, otp.Verify(ctx, "+919999999999", code))
}

func TestGenerateFailsWhenDispatchFails(t *testing.T) {
	sender := &stubSender{fail: true}
	otp := NewOTPService(NewMemoryCodeStore(), sender, "+91")
	ctx := context.Background()

	_, err := otp.Generate(ctx, "9999999999")
	require.Error(t, err)

	// Nothing was stored for the failed dispatch.
	err = otp.Verify(ctx, "9999999999", "123456")
	assert.ErrorIs(t, err, models.ErrCodeNotFound)
}

func TestVerifyUnknownPhone(t *testing.T) {
	otp, _ := newOTPFixture()

	err := otp.Verify(context.Background(), "8888888888", "123456")
	assert.ErrorIs(t, err, models.ErrCodeNotFound)
}
