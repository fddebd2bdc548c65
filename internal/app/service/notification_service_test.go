package service

import (
	"context"
	"errors"
	"testing"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notificationFixture struct {
	svc        *NotificationService
	repo       *fakeNotificationRepo
	deliveries *fakeDeliveryRepo
	publisher  *fakePublisher
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		repo:       newFakeNotificationRepo(),
		deliveries: newFakeDeliveryRepo(),
		publisher:  &fakePublisher{},
	}
	f.svc = NewNotificationService(f.repo, f.deliveries, f.publisher, noTx{}, zap.NewNop())
	return f
}

func TestNotificationService_Create(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	n, err := f.svc.Create(ctx, CreateNotificationRequest{
		Sender: sender(),
		Body:   "new challenge",
		Date:   "2024-03-01T10:00:00Z",
		Tests:  []model.Test{{Input: "1 2", ExpeectedOutput: "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{n.ID}, f.publisher.published)

	d, err := f.svc.Delivery(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryQueued, d.Status)
	assert.NotEmpty(t, d.ID)

	empty, err := f.svc.Create(ctx, CreateNotificationRequest{Sender: sender(), Body: "no tests", Date: "2024-03-02"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Tests)
	assert.Empty(t, empty.Tests)
}

func TestNotificationService_CreateSurvivesPublishFailure(t *testing.T) {
	f := newNotificationFixture()
	f.publisher.err = errors.New("redis down")

	n, err := f.svc.Create(context.Background(), CreateNotificationRequest{Sender: sender(), Body: "b", Date: "2024-03-01"})
	require.NoError(t, err)
	_, err = f.repo.FindByID(context.Background(), n.ID)
	assert.NoError(t, err)
}

func TestNotificationService_CreateRejectsInvalid(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateNotificationRequest{Body: "b", Date: "2024-03-01"})
	assert.ErrorIs(t, err, common.ErrMissingRequiredField)

	_, err = f.svc.Create(ctx, CreateNotificationRequest{Sender: sender(), Body: "b", Date: "03/01/2024"})
	assert.ErrorIs(t, err, common.ErrMalformedDateTime)

	f.repo.createErr = errors.New("insert failed")
	_, err = f.svc.Create(ctx, CreateNotificationRequest{Sender: sender(), Body: "b", Date: "2024-03-01"})
	assert.Error(t, err)
	assert.Empty(t, f.publisher.published)
	assert.Empty(t, f.deliveries.deliveries)
}

func TestNotificationService_MarkRead(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()
	unread := true

	n, err := f.svc.Create(ctx, CreateNotificationRequest{Unread: &unread, Sender: sender(), Body: "b", Date: "2024-03-01"})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	read, err := f.svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, read.IsUnread())

	page, err = f.svc.List(ctx, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestDeliveryService_HandleReceipt(t *testing.T) {
	ctx := context.Background()
	repo := newFakeDeliveryRepo()
	require.NoError(t, repo.Create(ctx, nil, &model.Delivery{ID: "d-1", NotificationID: 1, Status: model.DeliverySending}))
	svc := NewDeliveryService(repo, zap.NewNop())

	err := svc.HandleReceipt(ctx, DeliveryReceipt{NotificationID: 1, DeliveryID: "other", Status: "delivered"})
	assert.ErrorIs(t, err, common.ErrConflict)

	err = svc.HandleReceipt(ctx, DeliveryReceipt{NotificationID: 2, DeliveryID: "d-1", Status: "delivered"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = svc.HandleReceipt(ctx, DeliveryReceipt{NotificationID: 1, DeliveryID: "d-1", Status: "bounced"})
	assert.ErrorIs(t, err, common.ErrInvalidEnumValue)

	require.NoError(t, svc.HandleReceipt(ctx, DeliveryReceipt{NotificationID: 1, DeliveryID: "d-1", Status: "delivered"}))
	assert.Equal(t, model.DeliveryDelivered, repo.deliveries[1].Status)

	// A late failure receipt must not overwrite a settled delivery.
	reason := "timeout"
	require.NoError(t, svc.HandleReceipt(ctx, DeliveryReceipt{NotificationID: 1, DeliveryID: "d-1", Status: "failed", Error: &reason}))
	assert.Equal(t, model.DeliveryDelivered, repo.deliveries[1].Status)
	assert.Nil(t, repo.deliveries[1].LastError)
}
