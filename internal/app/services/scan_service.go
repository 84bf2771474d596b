package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/facerec"
	"github.com/yigit/registrar/internal/pkg/filestorage"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Scan session events pushed to subscribers
const (
	ScanEventStarted = "scan.started"
	ScanEventFrame   = "scan.frame"
	ScanEventClosed  = "scan.closed"
	ScanEventExpired = "scan.expired"
)

// AutoScanNote is stored with attendance rows written by a face scan
const AutoScanNote = "Auto-scanned"

// Publisher delivers session events to live subscribers
type Publisher interface {
	Publish(topic, eventType string, payload interface{})
	CloseTopic(topic string)
}

// ScanConfig tunes face scan sessions
type ScanConfig struct {
	Tolerance float64
	// Workers bounds concurrent gallery encodings
	Workers int
	IdleTTL time.Duration
	// FrameInterval is the minimum spacing of processed frames; zero disables throttling
	FrameInterval time.Duration
	KeepFrames    bool
}

// ScanService runs face recognition attendance sessions
type ScanService interface {
	Start(ctx context.Context, req dto.StartScanRequest) (*dto.ScanSessionResponse, error)
	Get(id string) (*dto.ScanSessionResponse, error)
	ProcessFrame(ctx context.Context, id string, frame []byte) (*dto.ScanFrameResponse, error)
	Close(id string) (*dto.ScanSummaryResponse, error)
	// Run expires idle sessions until ctx is done
	Run(ctx context.Context)
}

type scanSession struct {
	mu        sync.Mutex
	id        string
	classID   int64
	subjectID int64
	date      time.Time
	gallery   *facerec.Gallery
	skipped   []string
	limiter   *rate.Limiter
	startedAt time.Time
	// lastSeen is unix nanos, read by the reaper without taking mu
	lastSeen atomic.Int64
	marked   []dto.ScanMarkedStudent
	seen      map[int64]bool
}

type scanServiceImpl struct {
	cfg        ScanConfig
	encoder    facerec.Encoder
	students   StudentStore
	schedules  ScheduleStore
	attendance AttendanceStore
	lookups    LookupStore
	subjects   SubjectStore
	storage    filestorage.FileStorage
	publisher  Publisher
	logger     zerolog.Logger
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*scanSession
}

// ScanDeps groups the collaborators of the scan service
type ScanDeps struct {
	Encoder    facerec.Encoder
	Students   StudentStore
	Schedules  ScheduleStore
	Attendance AttendanceStore
	Lookups    LookupStore
	Subjects   SubjectStore
	// Storage may be nil when frames are not kept
	Storage   filestorage.FileStorage
	Publisher Publisher
	Logger    zerolog.Logger
}

// NewScanService creates a new scan service instance
func NewScanService(cfg ScanConfig, deps ScanDeps) ScanService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &scanServiceImpl{
		cfg:        cfg,
		encoder:    deps.Encoder,
		students:   deps.Students,
		schedules:  deps.Schedules,
		attendance: deps.Attendance,
		lookups:    deps.Lookups,
		subjects:   deps.Subjects,
		storage:    deps.Storage,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
		now:        time.Now,
		sessions:   make(map[string]*scanSession),
	}
}

func encoderError(err error) error {
	if errors.Is(err, facerec.ErrEncoderUnavailable) {
		return apperrors.NewCustomError(apperrors.ErrDependencyUnavailable, err.Error())
	}
	return err
}

// Start loads the class gallery and opens a session. A pair not scheduled
// today is refused unless req.Force is set.
func (s *scanServiceImpl) Start(ctx context.Context, req dto.StartScanRequest) (*dto.ScanSessionResponse, error) {
	if _, err := s.lookups.GetByID(ctx, models.TableClass, req.ClassID); err != nil {
		return nil, err
	}
	if _, err := s.subjects.GetByID(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	now := s.now()
	today := helpers.Today(now)
	if !req.Force {
		ok, err := s.schedules.IsScheduled(ctx, req.ClassID, req.SubjectID, today.Weekday().String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrNotScheduledToday
		}
	}

	samples, err := s.students.FaceSamples(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, apperrors.ErrNoStudentPhotos
	}

	entries, skipped, err := s.encodeGallery(ctx, samples)
	if err != nil {
		return nil, encoderError(err)
	}
	if len(entries) == 0 {
		return nil, apperrors.ErrNoFaceEncodings
	}

	sess := &scanSession{
		id:        uuid.NewString(),
		classID:   req.ClassID,
		subjectID: req.SubjectID,
		date:      today,
		gallery:   facerec.NewGallery(entries, s.cfg.Tolerance),
		skipped:   skipped,
		startedAt: now,
		seen:      make(map[int64]bool),
	}
	sess.lastSeen.Store(now.UnixNano())
	if s.cfg.FrameInterval > 0 {
		sess.limiter = rate.NewLimiter(rate.Every(s.cfg.FrameInterval), 1)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	resp := sessionResponse(sess)
	s.publisher.Publish(sess.id, ScanEventStarted, resp)
	s.logger.Info().Str("sessionId", sess.id).Int64("classId", req.ClassID).Int64("subjectId", req.SubjectID).
		Int("gallery", len(entries)).Int("skipped", len(skipped)).Bool("forced", req.Force).Msg("Scan session started")
	return resp, nil
}

// encodeGallery encodes every sample photo, keeping the first face of each.
// Photos without a usable face are reported in skipped.
func (s *scanServiceImpl) encodeGallery(ctx context.Context, samples []models.FaceSample) ([]facerec.Entry, []string, error) {
	results := make([]*facerec.Entry, len(samples))
	problems := make([]string, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, sample := range samples {
		i, sample := i, sample
		g.Go(func() error {
			faces, err := s.encoder.Encode(gctx, sample.Photo)
			switch {
			case errors.Is(err, facerec.ErrEncoderUnavailable):
				return err
			case err != nil:
				problems[i] = fmt.Sprintf("Could not encode photo of '%s': %v", sample.Name, err)
			case len(faces) == 0:
				problems[i] = fmt.Sprintf("No face found in photo of '%s'", sample.Name)
			default:
				results[i] = &facerec.Entry{StudentID: sample.StudentID, Name: sample.Name, Encoding: faces[0].Encoding}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	entries := make([]facerec.Entry, 0, len(samples))
	var skipped []string
	for i := range samples {
		if results[i] != nil {
			entries = append(entries, *results[i])
		}
		if problems[i] != "" {
			skipped = append(skipped, problems[i])
		}
	}
	return entries, skipped, nil
}

func sessionResponse(sess *scanSession) *dto.ScanSessionResponse {
	return &dto.ScanSessionResponse{
		ID:          sess.id,
		ClassID:     sess.classID,
		SubjectID:   sess.subjectID,
		Date:        sess.date.Format(helpers.DateLayout),
		GallerySize: sess.gallery.Len(),
		Total:       sess.gallery.Len(),
		Skipped:     sess.skipped,
		StartedAt:   sess.startedAt,
	}
}

func (s *scanServiceImpl) session(id string) (*scanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.ErrScanSessionNotFound
	}
	return sess, nil
}

func (s *scanServiceImpl) Get(id string) (*dto.ScanSessionResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

// ProcessFrame matches every face of a frame against the session gallery and
// marks newly recognized students present.
func (s *scanServiceImpl) ProcessFrame(ctx context.Context, id string, frame []byte) (*dto.ScanFrameResponse, error) {
	if len(frame) == 0 {
		return nil, apperrors.NewBadRequestError("frame is empty")
	}
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.lastSeen.Store(s.now().UnixNano())
	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := &dto.ScanFrameResponse{SessionID: id, Faces: []dto.ScanFace{}, Total: sess.gallery.Len()}
	if sess.limiter != nil && !sess.limiter.Allow() {
		resp.Throttled = true
		resp.Recognized = len(sess.marked)
		return resp, nil
	}

	faces, err := s.encoder.Encode(ctx, frame)
	if err != nil {
		return nil, encoderError(err)
	}

	if s.cfg.KeepFrames && s.storage != nil {
		path, err := s.storage.Save("scans/"+sess.date.Format(helpers.DateLayout), ".jpg", frame)
		if err != nil {
			s.logger.Warn().Err(err).Str("sessionId", id).Msg("Failed to keep scan frame")
		} else {
			resp.FramePath = path
		}
	}

	for _, face := range faces {
		result, err := s.matchFace(ctx, sess, face)
		if err != nil {
			return nil, err
		}
		resp.Faces = append(resp.Faces, result)
	}
	resp.Recognized = len(sess.marked)

	s.publisher.Publish(id, ScanEventFrame, resp)
	return resp, nil
}

// matchFace must be called with sess.mu held
func (s *scanServiceImpl) matchFace(ctx context.Context, sess *scanSession, face facerec.Face) (dto.ScanFace, error) {
	m := sess.gallery.Match(face.Encoding)
	if !m.Known {
		return dto.ScanFace{Box: face.Box, Name: "Unknown", Distance: m.Distance, Result: dto.ScanFaceUnknown}, nil
	}

	studentID := m.Entry.StudentID
	out := dto.ScanFace{Box: face.Box, StudentID: &studentID, Name: m.Entry.Name, Distance: m.Distance, Result: dto.ScanFaceAlreadyMarked}
	if sess.seen[studentID] {
		return out, nil
	}

	note := AutoScanNote
	inserted, err := s.attendance.InsertIfAbsent(ctx, models.Attendance{
		StudentID:      studentID,
		SubjectID:      sess.subjectID,
		AttendanceDate: sess.date,
		Status:         models.StatusPresent,
		Notes:          &note,
	})
	if err != nil {
		return dto.ScanFace{}, err
	}

	// An existing row for today is left as recorded and not counted
	sess.seen[studentID] = true
	if !inserted {
		return out, nil
	}
	sess.marked = append(sess.marked, dto.ScanMarkedStudent{StudentID: studentID, Name: m.Entry.Name, MarkedAt: s.now()})
	out.Result = dto.ScanFaceMarked
	s.logger.Info().Str("sessionId", sess.id).Int64("studentId", studentID).Float64("distance", m.Distance).Msg("Student marked present")
	return out, nil
}

func (s *scanServiceImpl) remove(id string) (*scanSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.ErrScanSessionNotFound
	}
	delete(s.sessions, id)
	return sess, nil
}

func summary(sess *scanSession) *dto.ScanSummaryResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	marked := make([]dto.ScanMarkedStudent, len(sess.marked))
	copy(marked, sess.marked)
	return &dto.ScanSummaryResponse{
		SessionID:  sess.id,
		Recognized: len(marked),
		Total:      sess.gallery.Len(),
		Marked:     marked,
	}
}

// Close ends a session and returns how many gallery students were recognized
func (s *scanServiceImpl) Close(id string) (*dto.ScanSummaryResponse, error) {
	sess, err := s.remove(id)
	if err != nil {
		return nil, err
	}
	sum := summary(sess)
	s.publisher.Publish(id, ScanEventClosed, sum)
	s.publisher.CloseTopic(id)
	s.logger.Info().Str("sessionId", id).Int("recognized", sum.Recognized).Int("total", sum.Total).Msg("Scan session closed")
	return sum, nil
}

func (s *scanServiceImpl) Run(ctx context.Context) {
	interval := s.cfg.IdleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireIdle()
		}
	}
}

func (s *scanServiceImpl) expireIdle() {
	cutoff := s.now().Add(-s.cfg.IdleTTL).UnixNano()

	s.mu.Lock()
	var expired []*scanSession
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.publisher.Publish(sess.id, ScanEventExpired, summary(sess))
		s.publisher.CloseTopic(sess.id)
		s.logger.Info().Str("sessionId", sess.id).Msg("Scan session expired")
	}
}
