package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/facerec"
)

type scanFixture struct {
	svc        *scanServiceImpl
	encoder    *fakeEncoder
	students   *fakeStudents
	schedules  *fakeSchedules
	attendance *fakeAttendance
	publisher  *fakePublisher
	storage    *fakeStorage
	classID    int64
	now        time.Time
}

// 2024-03-04 is a Monday
var scanNow = time.Date(2024, time.March, 4, 9, 15, 0, 0, time.Local)

func newScanFixture(cfg ScanConfig) *scanFixture {
	lookups := newFakeLookups()
	fx := &scanFixture{
		encoder:    &fakeEncoder{byImage: map[string][]facerec.Face{}},
		students:   newFakeStudents(),
		schedules:  newFakeSchedules(),
		attendance: newFakeAttendance(),
		publisher:  &fakePublisher{},
		storage:    &fakeStorage{},
		classID:    lookups.add(models.TableClass, "M1"),
		now:        scanNow,
	}
	svc := NewScanService(cfg, ScanDeps{
		Encoder:    fx.encoder,
		Students:   fx.students,
		Schedules:  fx.schedules,
		Attendance: fx.attendance,
		Lookups:    lookups,
		Subjects:   newFakeSubjects("Math"),
		Storage:    fx.storage,
		Publisher:  fx.publisher,
		Logger:     zerolog.Nop(),
	}).(*scanServiceImpl)
	svc.now = func() time.Time { return fx.now }
	fx.svc = svc
	return fx
}

func face(enc ...float64) facerec.Face {
	return facerec.Face{Box: facerec.Box{Top: 1, Right: 2, Bottom: 3, Left: 0}, Encoding: enc}
}

// enroll adds a student whose photo encodes to enc
func (fx *scanFixture) enroll(name string, enc ...float64) int64 {
	photo := []byte("photo-" + name)
	id := fx.students.add(name, fx.classID, photo)
	fx.encoder.byImage[string(photo)] = []facerec.Face{face(enc...)}
	return id
}

func TestScanService_StartRequiresScheduleUnlessForced(t *testing.T) {
	fx := newScanFixture(ScanConfig{Tolerance: 0.6})
	fx.enroll("Alice", 0, 0)
	ctx := context.Background()

	_, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotScheduledToday)

	resp, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.GallerySize)
	assert.Equal(t, "2024-03-04", resp.Date)

	fx.schedules.add(models.ScheduleInput{ClassID: fx.classID, SubjectID: 1, DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})
	_, err = fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1})
	assert.NoError(t, err)
}

func TestScanService_StartGalleryErrors(t *testing.T) {
	ctx := context.Background()
	req := dto.StartScanRequest{SubjectID: 1, Force: true}

	fx := newScanFixture(ScanConfig{})
	req.ClassID = fx.classID
	fx.students.add("NoPhoto", fx.classID, nil)
	_, err := fx.svc.Start(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrNoStudentPhotos)

	fx.students.add("Blurry", fx.classID, []byte("blurry"))
	resp, err := fx.svc.Start(ctx, req)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, apperrors.ErrNoFaceEncodings)

	fx.encoder.err = facerec.ErrEncoderUnavailable
	_, err = fx.svc.Start(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrDependencyUnavailable)
}

func TestScanService_FrameMarksOncePerSession(t *testing.T) {
	fx := newScanFixture(ScanConfig{Tolerance: 0.6, KeepFrames: true})
	alice := fx.enroll("Alice", 0, 0)
	fx.enroll("Bob", 5, 5)
	fx.students.add("Blurry", fx.classID, []byte("blurry"))
	ctx := context.Background()

	sess, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Total)
	assert.Equal(t, []string{"No face found in photo of 'Blurry'"}, sess.Skipped)

	fx.encoder.byImage["frame"] = []facerec.Face{face(0.3, 0.3), face(2.5, 2.5)}
	resp, err := fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	require.Len(t, resp.Faces, 2)
	assert.Equal(t, dto.ScanFaceMarked, resp.Faces[0].Result)
	assert.Equal(t, alice, *resp.Faces[0].StudentID)
	assert.Equal(t, dto.ScanFaceUnknown, resp.Faces[1].Result)
	assert.Equal(t, "Unknown", resp.Faces[1].Name)
	assert.Equal(t, 1, resp.Recognized)
	assert.Equal(t, "scans/2024-03-04/frame.jpg", resp.FramePath)

	resp, err = fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, dto.ScanFaceAlreadyMarked, resp.Faces[0].Result)
	assert.Equal(t, 1, resp.Recognized)
	require.Len(t, fx.attendance.rows, 1)
	for _, row := range fx.attendance.rows {
		assert.Equal(t, models.StatusPresent, row.Status)
		assert.Equal(t, AutoScanNote, *row.Notes)
	}

	sum, err := fx.svc.Close(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Recognized)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, []string{sess.ID}, fx.publisher.closed)

	_, err = fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	assert.ErrorIs(t, err, apperrors.ErrScanSessionNotFound)
}

func TestScanService_ExistingRowIsNotOverwritten(t *testing.T) {
	fx := newScanFixture(ScanConfig{Tolerance: 0.6})
	alice := fx.enroll("Alice", 1, 1)
	ctx := context.Background()
	late := models.Attendance{StudentID: alice, SubjectID: 1, AttendanceDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local), Status: models.StatusLate}
	require.NoError(t, fx.attendance.Upsert(ctx, late))

	sess, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)

	fx.encoder.byImage["frame"] = []facerec.Face{face(1, 1)}
	resp, err := fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, dto.ScanFaceAlreadyMarked, resp.Faces[0].Result)
	assert.Equal(t, 0, resp.Recognized)
	assert.Equal(t, models.StatusLate, fx.attendance.rows[keyOf(late)].Status)

	// a second sighting does not query the store again
	_, err = fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, 1, fx.attendance.insertCalls)

	sum, err := fx.svc.Close(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Recognized)
	assert.Empty(t, sum.Marked)
}

func TestScanService_ThrottlesFrames(t *testing.T) {
	fx := newScanFixture(ScanConfig{FrameInterval: time.Hour})
	fx.enroll("Alice", 0, 0)
	ctx := context.Background()

	sess, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)
	calls := fx.encoder.calls

	first, err := fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	assert.False(t, first.Throttled)

	second, err := fx.svc.ProcessFrame(ctx, sess.ID, []byte("frame"))
	require.NoError(t, err)
	assert.True(t, second.Throttled)
	assert.Equal(t, calls+1, fx.encoder.calls)
}

func TestScanService_ExpiresIdleSessions(t *testing.T) {
	fx := newScanFixture(ScanConfig{IdleTTL: 10 * time.Minute})
	fx.enroll("Alice", 0, 0)

	sess, err := fx.svc.Start(context.Background(), dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)

	fx.now = fx.now.Add(5 * time.Minute)
	fx.svc.expireIdle()
	_, err = fx.svc.Get(sess.ID)
	require.NoError(t, err)

	fx.now = fx.now.Add(11 * time.Minute)
	fx.svc.expireIdle()
	_, err = fx.svc.Get(sess.ID)
	assert.ErrorIs(t, err, apperrors.ErrScanSessionNotFound)
	assert.Contains(t, fx.publisher.events, publishedEvent{sess.ID, ScanEventExpired})
}

func TestScanService_ReaperDoesNotWaitForBusySession(t *testing.T) {
	fx := newScanFixture(ScanConfig{IdleTTL: 10 * time.Minute})
	fx.enroll("Alice", 0, 0)
	ctx := context.Background()

	busy, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)
	idle, err := fx.svc.Start(ctx, dto.StartScanRequest{ClassID: fx.classID, SubjectID: 1, Force: true})
	require.NoError(t, err)

	// hold the busy session's lock as an in-flight encode would
	sess := fx.svc.sessions[busy.ID]
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fx.now = fx.now.Add(5 * time.Minute)
	sess.lastSeen.Store(fx.now.UnixNano())

	fx.now = fx.now.Add(6 * time.Minute)
	done := make(chan struct{})
	go func() {
		fx.svc.expireIdle()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expireIdle blocked on a locked session")
	}

	_, err = fx.svc.Get(idle.ID)
	assert.ErrorIs(t, err, apperrors.ErrScanSessionNotFound)
	_, err = fx.svc.Get(busy.ID)
	assert.NoError(t, err)
}
