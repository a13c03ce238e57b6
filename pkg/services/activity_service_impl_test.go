package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/models"
)

func newTestServices() (ActivityService, *mockActivityRepository, *mockPresenceRepository) {
	activityRepo := &mockActivityRepository{}
	presenceRepo := newMockPresenceRepository()
	presence := NewPresenceService(presenceRepo)
	return NewActivityService(activityRepo, presence), activityRepo, presenceRepo
}

func int64Ptr(v int64) *int64 { return &v }

func TestActivityService_Record_PersistsAndUpdatesPresence(t *testing.T) {
	svc, activityRepo, presenceRepo := newTestServices()
	ctx := context.Background()

	start := time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC)
	event, err := svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:            models.KindApplicationFocus,
		ApplicationName: "editor",
		WindowTitle:     "main.go",
		StartTime:       start,
		DurationSeconds: int64Ptr(300),
	})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.NotEmpty(t, event.ID)
	assert.Len(t, activityRepo.events, 1)

	status := presenceRepo.rows["user-1"]
	require.NotNil(t, status)
	assert.Equal(t, models.StateActive, status.CurrentStatus)
	// last_activity mirrors the event's start time, not the server clock
	assert.True(t, status.LastActivity.Equal(start))
	assert.Equal(t, "editor", status.CurrentApp)
	assert.Equal(t, "main.go", status.CurrentWindow)
}

func TestActivityService_Record_PresenceStateMapping(t *testing.T) {
	cases := []struct {
		kind models.EventKind
		want models.PresenceState
	}{
		{models.KindApplicationFocus, models.StateActive},
		{models.KindWindowChange, models.StateActive},
		{models.KindIdleStart, models.StateIdle},
		{models.KindIdleEnd, models.StateActive},
		// A locked machine means the user stepped away, not that they left
		{models.KindSystemLock, models.StateIdle},
		{models.KindSystemUnlock, models.StateActive},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			svc, _, presenceRepo := newTestServices()

			_, err := svc.Record(context.Background(), "user-1", RecordActivityInput{
				Kind:      tc.kind,
				StartTime: time.Now().UTC(),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, presenceRepo.rows["user-1"].CurrentStatus)
		})
	}
}

func TestActivityService_Record_EmptyAppLeavesPresenceAppUnchanged(t *testing.T) {
	svc, _, presenceRepo := newTestServices()
	ctx := context.Background()

	_, err := svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:            models.KindApplicationFocus,
		ApplicationName: "browser",
		WindowTitle:     "inbox",
		StartTime:       time.Now().UTC(),
	})
	require.NoError(t, err)

	// An event without app/window details must not blank out the stored ones
	_, err = svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:      models.KindIdleStart,
		StartTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	status := presenceRepo.rows["user-1"]
	assert.Equal(t, models.StateIdle, status.CurrentStatus)
	assert.Equal(t, "browser", status.CurrentApp)
	assert.Equal(t, "inbox", status.CurrentWindow)
}

func TestActivityService_Record_Validation(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	_, err := svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:      models.EventKind("KEYLOGGER"),
		StartTime: time.Now().UTC(),
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Record(ctx, "user-1", RecordActivityInput{
		Kind: models.KindWindowChange,
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:            models.KindWindowChange,
		StartTime:       time.Now().UTC(),
		DurationSeconds: int64Ptr(-5),
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Record(ctx, "", RecordActivityInput{
		Kind:      models.KindWindowChange,
		StartTime: time.Now().UTC(),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestActivityService_RecordBatch_PartialFailure(t *testing.T) {
	svc, activityRepo, _ := newTestServices()
	ctx := context.Background()

	now := time.Now().UTC()
	inputs := []RecordActivityInput{
		{Kind: models.KindApplicationFocus, StartTime: now},
		{Kind: models.EventKind("BOGUS"), StartTime: now},
		{Kind: models.KindIdleStart, StartTime: now.Add(time.Minute)},
	}

	results := svc.RecordBatch(ctx, "user-1", inputs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Event)
	assert.Equal(t, models.KindApplicationFocus, results[0].Event.Kind)

	assert.False(t, results[1].Success)
	assert.Nil(t, results[1].Event)
	assert.Contains(t, results[1].Error, "unknown event kind")

	assert.True(t, results[2].Success)

	// The bad item must not have blocked its neighbors
	assert.Len(t, activityRepo.events, 2)
}

func TestActivityService_List_DefaultLimit(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	base := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		_, err := svc.Record(ctx, "user-1", RecordActivityInput{
			Kind:      models.KindWindowChange,
			StartTime: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := svc.List(ctx, "user-1", models.ActivityQuery{})
	require.NoError(t, err)
	assert.Len(t, events, 50)
	// newest first
	assert.True(t, events[0].StartTime.After(events[1].StartTime))
}

func TestActivityService_Get_OwnershipIsNotFound(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	event, err := svc.Record(ctx, "owner", RecordActivityInput{
		Kind:      models.KindApplicationFocus,
		StartTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "owner", event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	// Someone else's event reads exactly like a missing one
	_, err = svc.Get(ctx, "intruder", event.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Get(ctx, "owner", "no-such-id")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestActivityService_Update_PartialFields(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	event, err := svc.Record(ctx, "owner", RecordActivityInput{
		Kind:            models.KindApplicationFocus,
		ApplicationName: "editor",
		WindowTitle:     "main.go",
		StartTime:       time.Now().UTC(),
	})
	require.NoError(t, err)

	app := "terminal"
	updated, err := svc.Update(ctx, "owner", event.ID, UpdateActivityInput{
		ApplicationName: &app,
		DurationSeconds: int64Ptr(90),
	})
	require.NoError(t, err)
	assert.Equal(t, "terminal", updated.ApplicationName)
	assert.Equal(t, "main.go", updated.WindowTitle)
	assert.Equal(t, int64(90), updated.Duration())

	_, err = svc.Update(ctx, "intruder", event.ID, UpdateActivityInput{ApplicationName: &app})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestActivityService_Update_TimingAndContextFields(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	event, err := svc.Record(ctx, "owner", RecordActivityInput{
		Kind:      models.KindApplicationFocus,
		StartTime: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Everything but identity and ownership is fair game for a correction
	kind := models.KindWindowChange
	start := time.Date(2026, 8, 27, 9, 15, 0, 0, time.UTC)
	os := "linux"
	device := "workstation-3"
	ip := "10.0.0.7"
	agent := "pulsetrack-agent/2.1"
	updated, err := svc.Update(ctx, "owner", event.ID, UpdateActivityInput{
		Kind:            &kind,
		StartTime:       &start,
		OperatingSystem: &os,
		DeviceName:      &device,
		IPAddress:       &ip,
		UserAgent:       &agent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindWindowChange, updated.Kind)
	assert.True(t, updated.StartTime.Equal(start))
	assert.Equal(t, "linux", updated.OperatingSystem)
	assert.Equal(t, "workstation-3", updated.DeviceName)
	assert.Equal(t, "10.0.0.7", updated.IPAddress)
	assert.Equal(t, "pulsetrack-agent/2.1", updated.UserAgent)

	badKind := models.EventKind("COFFEE_BREAK")
	_, err = svc.Update(ctx, "owner", event.ID, UpdateActivityInput{Kind: &badKind})
	assert.True(t, apperrors.IsValidation(err))

	var zero time.Time
	_, err = svc.Update(ctx, "owner", event.ID, UpdateActivityInput{StartTime: &zero})
	assert.True(t, apperrors.IsValidation(err))
}

func TestActivityService_Delete(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	event, err := svc.Record(ctx, "owner", RecordActivityInput{
		Kind:      models.KindApplicationFocus,
		StartTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, "intruder", event.ID)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, "owner", event.ID))

	err = svc.Delete(ctx, "owner", event.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestActivityService_Stats_DailyAggregation(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	record := func(kind models.EventKind, app string, at time.Time, duration *int64) {
		_, err := svc.Record(ctx, "user-1", RecordActivityInput{
			Kind:            kind,
			ApplicationName: app,
			StartTime:       at,
			DurationSeconds: duration,
		})
		require.NoError(t, err)
	}

	record(models.KindApplicationFocus, "editor", day.Add(9*time.Hour), int64Ptr(600))
	record(models.KindWindowChange, "browser", day.Add(10*time.Hour), int64Ptr(200))
	record(models.KindApplicationFocus, "editor", day.Add(11*time.Hour), int64Ptr(100))
	// No app name: counted in totals, excluded from application usage
	record(models.KindIdleStart, "", day.Add(12*time.Hour), nil)
	// Day-boundary events belong to the day they start in
	record(models.KindApplicationFocus, "other", day.Add(-time.Second), int64Ptr(999))
	record(models.KindApplicationFocus, "other", day.Add(24*time.Hour), int64Ptr(999))

	stats, err := svc.Stats(ctx, "user-1", day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2026-08-27", stats.Date)
	assert.Equal(t, 4, stats.TotalActivities)
	assert.Equal(t, int64(900), stats.TotalDuration)
	assert.Equal(t, int64(700), stats.ApplicationUsage["editor"])
	assert.Equal(t, int64(200), stats.ApplicationUsage["browser"])
	assert.NotContains(t, stats.ApplicationUsage, "")
	assert.Equal(t, "editor", stats.MostUsedApp)

	require.Len(t, stats.ActivityTimeline, 4)
	assert.True(t, stats.ActivityTimeline[0].Timestamp.Before(stats.ActivityTimeline[1].Timestamp))
}

func TestActivityService_Stats_DurationIndependentOfTimestamps(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	start := day.Add(9 * time.Hour)
	end := start.Add(2 * time.Hour) // wall-clock span: 7200s

	_, err := svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:            models.KindApplicationFocus,
		ApplicationName: "editor",
		StartTime:       start,
		EndTime:         &end,
		DurationSeconds: int64Ptr(1800), // client measured 30min of real activity
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "user-1", day)
	require.NoError(t, err)

	// The reported duration wins; the 2h timestamp span is never used
	assert.Equal(t, int64(1800), stats.TotalDuration)
	assert.Equal(t, int64(1800), stats.ApplicationUsage["editor"])
}

func TestActivityService_Stats_MissingDurationCountsAsZero(t *testing.T) {
	svc, _, _ := newTestServices()
	ctx := context.Background()

	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	_, err := svc.Record(ctx, "user-1", RecordActivityInput{
		Kind:            models.KindApplicationFocus,
		ApplicationName: "editor",
		StartTime:       day.Add(time.Hour),
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "user-1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalActivities)
	assert.Equal(t, int64(0), stats.TotalDuration)
}

func TestActivityService_CleanupOldEvents(t *testing.T) {
	svc, activityRepo, _ := newTestServices()
	ctx := context.Background()

	now := time.Now().UTC()
	activityRepo.events = []*models.ActivityEvent{
		{ID: "old", UserID: "u1", Kind: models.KindApplicationFocus, StartTime: now, CreatedAt: now.AddDate(0, 0, -45)},
		{ID: "fresh", UserID: "u2", Kind: models.KindApplicationFocus, StartTime: now, CreatedAt: now},
	}

	deleted, err := svc.CleanupOldEvents(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	require.Len(t, activityRepo.events, 1)
	assert.Equal(t, "fresh", activityRepo.events[0].ID)

	// A second sweep with nothing new to delete removes nothing
	deleted, err = svc.CleanupOldEvents(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	assert.Len(t, activityRepo.events, 1)

	_, err = svc.CleanupOldEvents(ctx, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestActivityService_Record_RepositoryError(t *testing.T) {
	activityRepo := &mockActivityRepository{createErr: errors.New("db down")}
	presence := NewPresenceService(newMockPresenceRepository())
	svc := NewActivityService(activityRepo, presence)

	_, err := svc.Record(context.Background(), "user-1", RecordActivityInput{
		Kind:      models.KindApplicationFocus,
		StartTime: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record activity")
}
