package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniattend/attendance-backend/internal/model"
)

func newClassFixture() (*ClassService, *fakeClassStore, *testClock) {
	clock := newTestClock(time.Date(2025, 3, 28, 12, 0, 0, 0, time.UTC))
	classes := newFakeClassStore()
	svc := NewClassService(classes, nopLog)
	svc.now = clock.Now
	return svc, classes, clock
}

func classRequest() model.CreateClassRequest {
	return model.CreateClassRequest{
		Code:      "csce_4900_500",
		EUID:      "prf0001",
		Location:  []float64{33.2148, -97.1331},
		StartDate: "2025-04-01",
		EndDate:   "2025-04-15",
		Times:     map[string]string{"Monday": "09:00:00", "Wednesday": "09:00:00"},
	}
}

func TestAddClassExpandsSessions(t *testing.T) {
	svc, classes, clock := newClassFixture()

	resp, err := svc.AddClass(context.Background(), classRequest())
	require.NoError(t, err)
	assert.Equal(t, 4, resp.SessionsCreated)
	assert.Len(t, resp.JoinCode, 8)

	var dates []string
	for _, s := range classes.sessions["csce_4900_500"] {
		dates = append(dates, s.Date)
	}
	assert.Equal(t, []string{"2025-04-02", "2025-04-07", "2025-04-09", "2025-04-14"}, dates)
	assert.Len(t, classes.weekly["csce_4900_500"], 2)

	info := classes.classes["csce_4900_500"]
	assert.Equal(t, "prf0001", info.ProfessorEUID)
	assert.Equal(t, resp.JoinCode, info.JoinCode)
	assert.Equal(t, clock.Now(), info.JoinCodeCreatedAt)
}

func TestAddClassRejectsBeforePersisting(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.CreateClassRequest)
		wantErr error
	}{
		{"inverted range", func(r *model.CreateClassRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }, ErrInvalidDateRange},
		{"no meeting days", func(r *model.CreateClassRequest) { r.Times = nil }, ErrNoMeetingDays},
		{"unknown weekday", func(r *model.CreateClassRequest) { r.Times = map[string]string{"Funday": "09:00:00"} }, ErrUnknownWeekday},
		{"bad time", func(r *model.CreateClassRequest) { r.Times = map[string]string{"Monday": "9am"} }, ErrInvalidTime},
		{"bad date", func(r *model.CreateClassRequest) { r.StartDate = "2025-13-01" }, ErrInvalidDate},
		{"bad location", func(r *model.CreateClassRequest) { r.Location = []float64{33.2} }, ErrInvalidLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, classes, _ := newClassFixture()
			req := classRequest()
			tt.mutate(&req)

			_, err := svc.AddClass(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, classes.createCalls)
		})
	}
}

func TestAddClassDuplicateCode(t *testing.T) {
	svc, _, _ := newClassFixture()
	ctx := context.Background()

	_, err := svc.AddClass(ctx, classRequest())
	require.NoError(t, err)
	_, err = svc.AddClass(ctx, classRequest())
	assert.ErrorIs(t, err, ErrClassExists)
}

func TestJoinCodeOwnership(t *testing.T) {
	svc, _, clock := newClassFixture()
	ctx := context.Background()
	created, err := svc.AddClass(ctx, classRequest())
	require.NoError(t, err)

	_, err = svc.GetJoinCode(ctx, "prf0002", "csce_4900_500")
	assert.ErrorIs(t, err, ErrNotClassOwner)
	_, err = svc.RotateJoinCode(ctx, "prf0002", "csce_4900_500")
	assert.ErrorIs(t, err, ErrNotClassOwner)

	current, err := svc.GetJoinCode(ctx, "prf0001", "csce_4900_500")
	require.NoError(t, err)
	assert.Equal(t, created.JoinCode, current.Code)

	clock.Advance(time.Hour)
	rotated, err := svc.RotateJoinCode(ctx, "prf0001", "csce_4900_500")
	require.NoError(t, err)
	assert.NotEqual(t, created.JoinCode, rotated.Code)
	assert.Equal(t, clock.Now(), rotated.CreatedAt)

	current, err = svc.GetJoinCode(ctx, "prf0001", "csce_4900_500")
	require.NoError(t, err)
	assert.Equal(t, rotated.Code, current.Code)
}

func TestScheduleLookups(t *testing.T) {
	svc, _, _ := newClassFixture()
	ctx := context.Background()
	_, err := svc.AddClass(ctx, classRequest())
	require.NoError(t, err)

	_, err = svc.Schedule(ctx, "math_1010_001")
	assert.ErrorIs(t, err, ErrClassNotFound)

	sessions, err := svc.Schedule(ctx, "csce_4900_500")
	require.NoError(t, err)
	assert.Len(t, sessions, 4)

	mine, err := svc.ProfessorSchedule(ctx, "prf0001")
	require.NoError(t, err)
	assert.Len(t, mine, 4)

	codes, err := svc.ProfessorClasses(ctx, "prf0001")
	require.NoError(t, err)
	assert.Equal(t, []string{"csce_4900_500"}, codes)

	none, err := svc.ProfessorClasses(ctx, "prf0002")
	require.NoError(t, err)
	assert.Empty(t, none)
}
