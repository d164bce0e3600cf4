package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/geo"
	"github.com/uniattend/attendance-backend/internal/model"
)

var classLocation = geo.Point{Lat: 33.2148, Lon: -97.1331}

type attendanceFixture struct {
	svc       *AttendanceService
	classes   *fakeClassStore
	records   *fakeAttendanceStore
	verifier  *fakeVerifier
	publisher *fakePublisher
	clock     *testClock
}

// newAttendanceFixture sets up csce_4900_500 meeting today at sessionTime,
// with the clock at 09:00 local time.
func newAttendanceFixture(t *testing.T, sessionTime string) *attendanceFixture {
	t.Helper()
	clock := newTestClock(time.Date(2025, 4, 7, 9, 0, 0, 0, time.Local))
	classes := newFakeClassStore()
	classes.addClass(model.ClassInfo{
		Code: "csce_4900_500", ProfessorEUID: "prf0001",
		Lat: classLocation.Lat, Lon: classLocation.Lon,
		StartDate: "2025-04-01", EndDate: "2025-04-30",
	},
		model.ClassSession{Date: "2025-04-07", Time: sessionTime},
		model.ClassSession{Date: "2025-04-09", Time: sessionTime},
	)

	records := newFakeAttendanceStore()
	verifier := &fakeVerifier{result: biometric.Matched}
	publisher := &fakePublisher{}

	svc := NewAttendanceService(testConfig(), classes, records, verifier, newFakeRefs(), publisher, nopLog)
	svc.now = clock.Now
	return &attendanceFixture{svc: svc, classes: classes, records: records, verifier: verifier, publisher: publisher, clock: clock}
}

func submission(at geo.Point) model.SubmitAttendanceRequest {
	return model.SubmitAttendanceRequest{
		Code:     "csce_4900_500",
		EUID:     "abc1234",
		Location: []float64{at.Lat, at.Lon},
		Photo:    "cGhvdG8=",
	}
}

func TestSubmitAdmitsAndRecords(t *testing.T) {
	f := newAttendanceFixture(t, "09:10:00")

	rec, err := f.svc.Submit(context.Background(), submission(classLocation))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attended)
	assert.Equal(t, 1, f.verifier.calls)
	assert.Equal(t, []string{"/refs/Student/abc1234/reference_image.jpg"}, f.verifier.paths)
	assert.Equal(t, 1, f.records.records[attendanceKey{rec.SessionID, "abc1234"}])

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventAttendanceMarked, f.publisher.events[0].Type)
	assert.Equal(t, "2025-04-07", f.publisher.events[0].Date)
}

func TestSubmitIsIdempotent(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, submission(classLocation))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, submission(classLocation))
	require.NoError(t, err)

	assert.Len(t, f.records.records, 1)
	assert.Equal(t, 2, f.records.upserts)
}

func TestSubmitUnknownClass(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	req := submission(classLocation)
	req.Code = "math_1010_001"

	_, err := f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.Zero(t, f.verifier.calls)
}

func TestSubmitNoClassToday(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	f.clock.Advance(24 * time.Hour)

	_, err := f.svc.Submit(context.Background(), submission(classLocation))
	assert.ErrorIs(t, err, ErrNoClassOnDate)
	assert.Zero(t, f.verifier.calls)
	assert.Zero(t, f.records.upserts)
}

func TestSubmitTimeWindowBoundary(t *testing.T) {
	tests := []struct {
		name        string
		sessionTime string
		wantErr     error
	}{
		{"exactly 30 minutes early", "09:30:00", nil},
		{"exactly 30 minutes late", "08:30:00", nil},
		{"31 minutes early", "09:31:00", ErrOutsideTimeRange},
		{"31 minutes late", "08:29:00", ErrOutsideTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttendanceFixture(t, tt.sessionTime)
			_, err := f.svc.Submit(context.Background(), submission(classLocation))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.verifier.calls)
		})
	}
}

func TestSubmitTooFarNeverVerifies(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	far := geo.Point{Lat: classLocation.Lat + 0.01, Lon: classLocation.Lon}

	_, err := f.svc.Submit(context.Background(), submission(far))
	assert.ErrorIs(t, err, ErrTooFar)
	assert.Zero(t, f.verifier.calls)
	assert.Zero(t, f.records.upserts)
	assert.Empty(t, f.publisher.events)
}

func TestSubmitDistanceBoundaryIsInclusive(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	near := geo.Point{Lat: classLocation.Lat + 0.00005, Lon: classLocation.Lon}
	f.svc.maxFeet = geo.Distance(near, classLocation)

	_, err := f.svc.Submit(context.Background(), submission(near))
	assert.NoError(t, err)
}

func TestSubmitInvalidLocation(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	req := submission(classLocation)
	req.Location = []float64{91, 0}

	_, err := f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidLocation)
	assert.Zero(t, f.verifier.calls)
}

func TestSubmitSurfacesFaceReason(t *testing.T) {
	reasons := []biometric.Reason{
		biometric.ReasonInvalidEncoding,
		biometric.ReasonNoFaceInReference,
		biometric.ReasonNoFaceInSubmitted,
		biometric.ReasonDoesNotMatch,
	}
	for _, reason := range reasons {
		t.Run(string(reason), func(t *testing.T) {
			f := newAttendanceFixture(t, "09:00:00")
			f.verifier.result = biometric.NotMatched(reason)

			_, err := f.svc.Submit(context.Background(), submission(classLocation))
			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindRejected, svcErr.Kind)
			assert.Equal(t, string(reason), svcErr.Code)
			assert.Zero(t, f.records.upserts)
		})
	}
}

func TestSubmitMissingReferenceIsNotFound(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	f.verifier.result = biometric.NotMatched(biometric.ReasonReferenceNotFound)

	_, err := f.svc.Submit(context.Background(), submission(classLocation))
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "REFERENCE_NOT_FOUND", svcErr.Code)
}

func TestSubmitVerifierFailureIsInternal(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	f.verifier.err = errors.New("disk on fire")

	_, err := f.svc.Submit(context.Background(), submission(classLocation))
	require.Error(t, err)
	var svcErr *Error
	assert.False(t, errors.As(err, &svcErr))
	assert.Zero(t, f.records.upserts)
}

func TestSubmitPublishFailureDoesNotAffectOutcome(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	f.publisher.err = errors.New("redis down")

	_, err := f.svc.Submit(context.Background(), submission(classLocation))
	assert.NoError(t, err)
	assert.Equal(t, 1, f.records.upserts)
}

func TestClassAttendanceRequiresOwner(t *testing.T) {
	f := newAttendanceFixture(t, "09:00:00")
	ctx := context.Background()

	_, err := f.svc.ClassAttendance(ctx, "prf0002", "csce_4900_500")
	assert.ErrorIs(t, err, ErrNotClassOwner)

	_, err = f.svc.ClassAttendance(ctx, "prf0001", "csce_4900_500")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.AuthorizeFeed(ctx, "prf0002", "csce_4900_500"), ErrNotClassOwner)
	assert.ErrorIs(t, f.svc.AuthorizeFeed(ctx, "prf0001", "nope_0000_000"), ErrClassNotFound)
}
