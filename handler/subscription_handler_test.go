package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionly/missionly-core/model"
)

type fakeUserRepo struct{}

func (f *fakeUserRepo) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	return &model.User{ID: id, Role: model.RoleWorker, ValidationStatus: model.ValidationValidated}, nil
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) UpdateValidation(context.Context, uint, model.ValidationStatus) error {
	return nil
}

type fakeSubscriptionRepo struct {
	subscribed int
}

func (f *fakeSubscriptionRepo) FindActiveByUserID(context.Context, uint) (*model.Subscription, error) {
	return nil, nil
}

func (f *fakeSubscriptionRepo) Subscribe(_ context.Context, _ *model.Subscription) error {
	f.subscribed++
	return nil
}

func (f *fakeSubscriptionRepo) Cancel(context.Context, uint) error { return nil }
func (f *fakeSubscriptionRepo) Expire(context.Context, uint) error { return nil }

func postPaymentEvent(h *subscriptionHandler, secret string) *httptest.ResponseRecorder {
	e := echo.New()
	body := `{"user_id":1,"plan_code":"PREMIUM","event":"payment_succeeded","months":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	rec := httptest.NewRecorder()
	if err := h.PaymentWebhook(e.NewContext(req, rec)); err != nil {
		panic(err)
	}
	return rec
}

func TestPaymentWebhookRequiresSecret(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "relay-secret")

	subRepo := &fakeSubscriptionRepo{}
	h := NewSubscriptionHandler(subRepo, nil, &fakeUserRepo{})

	// No secret: rejected, nothing minted.
	rec := postPaymentEvent(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, subRepo.subscribed)

	// Wrong secret: same.
	rec = postPaymentEvent(h, "guess")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, subRepo.subscribed)

	// Correct secret: the event applies.
	rec = postPaymentEvent(h, "relay-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, subRepo.subscribed)
}

func TestPaymentWebhookRejectsAllWhenSecretUnset(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "")

	subRepo := &fakeSubscriptionRepo{}
	h := NewSubscriptionHandler(subRepo, nil, &fakeUserRepo{})

	rec := postPaymentEvent(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, subRepo.subscribed)
}
