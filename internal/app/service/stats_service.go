package service

import (
	"context"
	"time"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
)

type StatsService struct {
	mailRepo         repository.MailRepository
	notificationRepo repository.NotificationRepository
}

func NewStatsService(mailRepo repository.MailRepository, notificationRepo repository.NotificationRepository) *StatsService {
	return &StatsService{mailRepo: mailRepo, notificationRepo: notificationRepo}
}

type ActivityPoint struct {
	Date          time.Time `json:"date"`
	Mails         int       `json:"mails"`
	Notifications int       `json:"notifications"`
}

// Activity counts mails and notifications per period bucket of rng. The last
// bucket is counted in full even when rng ends part way through it.
func (s *StatsService) Activity(ctx context.Context, period model.Period, rng model.Range) ([]ActivityPoint, error) {
	buckets, err := model.Buckets(rng, period)
	if err != nil {
		return nil, err
	}
	points := make([]ActivityPoint, len(buckets))
	index := make(map[time.Time]int, len(buckets))
	for i, b := range buckets {
		points[i].Date = b
		index[b] = i
	}

	span := rng.ThroughBucket(period)
	mailTimes, err := s.mailRepo.SentAtBetween(ctx, span)
	if err != nil {
		return nil, err
	}
	for _, t := range mailTimes {
		if i, ok := index[model.BucketFor(t, period)]; ok {
			points[i].Mails++
		}
	}

	notificationTimes, err := s.notificationRepo.SentAtBetween(ctx, span)
	if err != nil {
		return nil, err
	}
	for _, t := range notificationTimes {
		if i, ok := index[model.BucketFor(t, period)]; ok {
			points[i].Notifications++
		}
	}
	return points, nil
}
