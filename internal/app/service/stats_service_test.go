package service

import (
	"context"
	"testing"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Activity(t *testing.T) {
	ctx := context.Background()
	mails := newFakeMailRepo()
	notifications := newFakeNotificationRepo()

	for _, date := range []string{"2024-03-03T09:00:00Z", "2024-03-05T12:00:00Z", "2024-03-12T08:00:00Z", "2024-04-01T00:00:00Z"} {
		require.NoError(t, mails.Create(ctx, &model.Mail{From: *sender(), Date: date}))
	}
	require.NoError(t, notifications.Create(ctx, nil, &model.Notification{Sender: *sender(), Date: "2024-03-09T23:59:59Z"}))

	svc := NewStatsService(mails, notifications)
	rng, err := model.NewRange("2024-03-01T00:00:00Z", "2024-03-16T00:00:00Z")
	require.NoError(t, err)

	points, err := svc.Activity(ctx, model.PeriodWeekly, rng)
	require.NoError(t, err)
	require.Len(t, points, 3)

	day := func(s string) time.Time {
		v, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return v
	}
	assert.True(t, points[0].Date.Equal(day("2024-02-25")))
	assert.Equal(t, 0, points[0].Mails)
	assert.True(t, points[1].Date.Equal(day("2024-03-03")))
	assert.Equal(t, 2, points[1].Mails)
	assert.Equal(t, 1, points[1].Notifications)
	assert.True(t, points[2].Date.Equal(day("2024-03-10")))
	assert.Equal(t, 1, points[2].Mails)
}

func TestStatsService_ActivityCountsWholeLastDay(t *testing.T) {
	ctx := context.Background()
	mails := newFakeMailRepo()
	notifications := newFakeNotificationRepo()
	require.NoError(t, mails.Create(ctx, &model.Mail{From: *sender(), Date: "2024-03-31T10:00:00Z"}))
	require.NoError(t, mails.Create(ctx, &model.Mail{From: *sender(), Date: "2024-04-01T00:00:00Z"}))
	require.NoError(t, notifications.Create(ctx, nil, &model.Notification{Sender: *sender(), Date: "2024-03-31T23:59:59Z"}))

	svc := NewStatsService(mails, notifications)
	rng, err := model.NewRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)

	points, err := svc.Activity(ctx, model.PeriodDaily, rng)
	require.NoError(t, err)
	require.Len(t, points, 31)
	last := points[len(points)-1]
	assert.Equal(t, "2024-03-31", last.Date.Format("2006-01-02"))
	assert.Equal(t, 1, last.Mails)
	assert.Equal(t, 1, last.Notifications)

	monthly, err := svc.Activity(ctx, model.PeriodMonthly, rng)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, 1, monthly[0].Mails, "April mail stays out of March")
}

func TestStatsService_ActivityRejectsBadPeriod(t *testing.T) {
	svc := NewStatsService(newFakeMailRepo(), newFakeNotificationRepo())
	rng, err := model.NewRange("2024-03-01", "2024-03-02")
	require.NoError(t, err)

	_, err = svc.Activity(context.Background(), model.Period("hourly"), rng)
	assert.ErrorIs(t, err, common.ErrInvalidEnumValue)
}
