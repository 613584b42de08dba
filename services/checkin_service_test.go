package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stackedwins/apperr"
	"stackedwins/models"
)

func TestCheckInInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   CheckInInput
		want string
	}{
		{name: "Valid", in: CheckInInput{Energy: intPtr(6), Stress: intPtr(3)}},
		{name: "Valid with sleep", in: CheckInInput{Energy: intPtr(1), Stress: intPtr(10), SleepQuality: intPtr(10)}},
		{name: "Missing energy", in: CheckInInput{Stress: intPtr(3)}, want: msgCheckInRequired},
		{name: "Missing stress", in: CheckInInput{Energy: intPtr(3)}, want: msgCheckInRequired},
		{name: "Energy out of range", in: CheckInInput{Energy: intPtr(0), Stress: intPtr(3)}, want: msgCheckInRange},
		{name: "Stress out of range", in: CheckInInput{Energy: intPtr(5), Stress: intPtr(11)}, want: msgCheckInRange},
		{name: "Sleep out of range", in: CheckInInput{Energy: intPtr(5), Stress: intPtr(5), SleepQuality: intPtr(0)}, want: msgCheckInSleep},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.want, apperr.PublicMessage(err))
		})
	}
}

func TestCheckInService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores today's check-in and refreshes metrics", func(t *testing.T) {
		checkIns := new(MockCheckInRepository)
		metrics := new(MockMetricsService)
		stored := &models.DailyCheckIn{ID: "c1", UserID: "user-1", Date: testToday, Energy: 7, Stress: 4}
		checkIns.On("Upsert", mock.Anything, mock.MatchedBy(func(c *models.DailyCheckIn) bool {
			return c.UserID == "user-1" && c.Date.Equal(testToday) && c.Energy == 7 && c.Stress == 4 &&
				c.Reflection != nil && *c.Reflection == "good day"
		})).Return(stored, nil).Once()
		metrics.On("UpdateProgressMetrics", mock.Anything, "user-1").Once()
		service := NewCheckInService(checkIns, metrics, fixedClock(testNow), time.UTC, nil)

		got, err := service.Submit(ctx, "user-1", CheckInInput{Energy: intPtr(7), Stress: intPtr(4), Reflection: strPtr("good day")})

		require.NoError(t, err)
		assert.Same(t, stored, got)
		checkIns.AssertExpectations(t)
		metrics.AssertExpectations(t)
	})

	t.Run("Blank reflection is dropped", func(t *testing.T) {
		checkIns := new(MockCheckInRepository)
		metrics := new(MockMetricsService)
		checkIns.On("Upsert", mock.Anything, mock.MatchedBy(func(c *models.DailyCheckIn) bool {
			return c.Reflection == nil
		})).Return(&models.DailyCheckIn{ID: "c1"}, nil).Once()
		metrics.On("UpdateProgressMetrics", mock.Anything, "user-1").Once()
		service := NewCheckInService(checkIns, metrics, fixedClock(testNow), time.UTC, nil)

		_, err := service.Submit(ctx, "user-1", CheckInInput{Energy: intPtr(7), Stress: intPtr(4), Reflection: strPtr("   ")})

		require.NoError(t, err)
		checkIns.AssertExpectations(t)
	})

	t.Run("Day boundary follows the configured zone", func(t *testing.T) {
		zone := time.FixedZone("UTC-10", -10*3600)
		checkIns := new(MockCheckInRepository)
		metrics := new(MockMetricsService)
		// 14:30 UTC is 04:30 the same day at UTC-10
		checkIns.On("Upsert", mock.Anything, mock.MatchedBy(func(c *models.DailyCheckIn) bool {
			return c.Date.Equal(time.Date(2026, time.October, 15, 0, 0, 0, 0, zone))
		})).Return(&models.DailyCheckIn{ID: "c1"}, nil).Once()
		metrics.On("UpdateProgressMetrics", mock.Anything, "user-1").Once()
		service := NewCheckInService(checkIns, metrics, fixedClock(testNow), zone, nil)

		_, err := service.Submit(ctx, "user-1", CheckInInput{Energy: intPtr(5), Stress: intPtr(5)})

		require.NoError(t, err)
		checkIns.AssertExpectations(t)
	})

	t.Run("Invalid input", func(t *testing.T) {
		checkIns := new(MockCheckInRepository)
		service := NewCheckInService(checkIns, new(MockMetricsService), fixedClock(testNow), time.UTC, nil)

		_, err := service.Submit(ctx, "user-1", CheckInInput{Energy: intPtr(5)})

		assert.Equal(t, msgCheckInRequired, apperr.PublicMessage(err))
		checkIns.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Store failure skips metrics", func(t *testing.T) {
		checkIns := new(MockCheckInRepository)
		metrics := new(MockMetricsService)
		checkIns.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
		service := NewCheckInService(checkIns, metrics, fixedClock(testNow), time.UTC, nil)

		_, err := service.Submit(ctx, "user-1", CheckInInput{Energy: intPtr(5), Stress: intPtr(5)})

		assert.Error(t, err)
		metrics.AssertNotCalled(t, "UpdateProgressMetrics", mock.Anything, mock.Anything)
	})
}

func TestCheckInService_History(t *testing.T) {
	ctx := context.Background()
	checkIns := new(MockCheckInRepository)
	checkIns.On("ListRecent", mock.Anything, "user-1", DefaultHistoryLimit).Return([]models.DailyCheckIn{{ID: "c2"}, {ID: "c1"}}, nil).Once()
	checkIns.On("ListRecent", mock.Anything, "user-1", 7).Return([]models.DailyCheckIn{{ID: "c2"}}, nil).Once()
	service := NewCheckInService(checkIns, nil, fixedClock(testNow), time.UTC, nil)

	all, err := service.History(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	week, err := service.History(ctx, "user-1", 7)
	require.NoError(t, err)
	assert.Len(t, week, 1)
	checkIns.AssertExpectations(t)
}
