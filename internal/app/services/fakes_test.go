package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/facerec"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

type fakeLookups struct {
	rows   map[models.LookupTable]map[int64]string
	nextID int64
}

func newFakeLookups() *fakeLookups {
	return &fakeLookups{rows: map[models.LookupTable]map[int64]string{
		models.TableDepartment:   {},
		models.TableClass:        {},
		models.TableAcademicYear: {},
	}}
}

func (f *fakeLookups) add(table models.LookupTable, name string) int64 {
	f.nextID++
	f.rows[table][f.nextID] = name
	return f.nextID
}

func (f *fakeLookups) List(_ context.Context, table models.LookupTable) ([]models.LookupItem, error) {
	var items []models.LookupItem
	for id, name := range f.rows[table] {
		items = append(items, models.LookupItem{ID: id, Name: name})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (f *fakeLookups) GetByID(_ context.Context, table models.LookupTable, id int64) (*models.LookupItem, error) {
	name, ok := f.rows[table][id]
	if !ok {
		return nil, notFoundForTable(table)
	}
	return &models.LookupItem{ID: id, Name: name}, nil
}

func (f *fakeLookups) GetByName(_ context.Context, table models.LookupTable, name string) (*models.LookupItem, error) {
	for id, n := range f.rows[table] {
		if n == name {
			return &models.LookupItem{ID: id, Name: n}, nil
		}
	}
	return nil, notFoundForTable(table)
}

func (f *fakeLookups) Create(ctx context.Context, table models.LookupTable, name string) (int64, error) {
	if _, err := f.GetByName(ctx, table, name); err == nil {
		return 0, apperrors.ErrNameAlreadyExists
	}
	return f.add(table, name), nil
}

func (f *fakeLookups) EnsureName(ctx context.Context, table models.LookupTable, name string) (int64, error) {
	if item, err := f.GetByName(ctx, table, name); err == nil {
		return item.ID, nil
	}
	return f.add(table, name), nil
}

func (f *fakeLookups) Rename(_ context.Context, table models.LookupTable, id int64, name string) error {
	if _, ok := f.rows[table][id]; !ok {
		return notFoundForTable(table)
	}
	f.rows[table][id] = name
	return nil
}

func (f *fakeLookups) Delete(_ context.Context, table models.LookupTable, id int64) error {
	if _, ok := f.rows[table][id]; !ok {
		return notFoundForTable(table)
	}
	delete(f.rows[table], id)
	return nil
}

func notFoundForTable(table models.LookupTable) error {
	switch table {
	case models.TableDepartment:
		return apperrors.ErrDepartmentNotFound
	case models.TableClass:
		return apperrors.ErrClassNotFound
	}
	return apperrors.ErrAcademicYearNotFound
}

type fakeMajors struct {
	majors []models.Major
}

func (f *fakeMajors) List(_ context.Context, departmentID *int64) ([]models.Major, error) {
	var out []models.Major
	for _, m := range f.majors {
		if departmentID == nil || m.DepartmentID == *departmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMajors) GetByID(_ context.Context, id int64) (*models.Major, error) {
	for _, m := range f.majors {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, apperrors.ErrMajorNotFound
}

func (f *fakeMajors) GetByName(_ context.Context, name string) (*models.Major, error) {
	for _, m := range f.majors {
		if m.Name == name {
			return &m, nil
		}
	}
	return nil, apperrors.ErrMajorNotFound
}

func (f *fakeMajors) ExistsInDepartment(_ context.Context, name string, departmentID, excludeID int64) (bool, error) {
	for _, m := range f.majors {
		if m.Name == name && m.DepartmentID == departmentID && m.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMajors) Create(_ context.Context, name string, departmentID int64) (int64, error) {
	id := int64(len(f.majors) + 1)
	f.majors = append(f.majors, models.Major{ID: id, Name: name, DepartmentID: departmentID})
	return id, nil
}

func (f *fakeMajors) Update(_ context.Context, id int64, name string, departmentID int64) error {
	for i := range f.majors {
		if f.majors[i].ID == id {
			f.majors[i].Name, f.majors[i].DepartmentID = name, departmentID
			return nil
		}
	}
	return apperrors.ErrMajorNotFound
}

func (f *fakeMajors) Delete(context.Context, int64) error { return nil }

type fakeSubjects struct {
	subjects map[int64]models.Subject
}

func newFakeSubjects(names ...string) *fakeSubjects {
	f := &fakeSubjects{subjects: map[int64]models.Subject{}}
	for i, n := range names {
		id := int64(i + 1)
		f.subjects[id] = models.Subject{ID: id, Name: n}
	}
	return f
}

func (f *fakeSubjects) List(context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range f.subjects {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubjects) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return &s, nil
}

func (f *fakeSubjects) Create(_ context.Context, s models.Subject) (int64, error) {
	s.ID = int64(len(f.subjects) + 1)
	f.subjects[s.ID] = s
	return s.ID, nil
}

func (f *fakeSubjects) Update(_ context.Context, s models.Subject) error {
	if _, ok := f.subjects[s.ID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	f.subjects[s.ID] = s
	return nil
}

func (f *fakeSubjects) Delete(_ context.Context, id int64) error {
	delete(f.subjects, id)
	return nil
}

type fakeSchedules struct {
	entries map[int64]models.ScheduleInput
	nextID  int64
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{entries: map[int64]models.ScheduleInput{}}
}

func (f *fakeSchedules) add(in models.ScheduleInput) int64 {
	f.nextID++
	f.entries[f.nextID] = in
	return f.nextID
}

func sameYear(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeSchedules) Search(_ context.Context, flt models.ScheduleFilter) ([]models.Schedule, error) {
	var out []models.Schedule
	for id, e := range f.entries {
		if flt.DayOfWeek != "" && e.DayOfWeek != flt.DayOfWeek {
			continue
		}
		if flt.NoAcademicYear && e.AcademicYearID != nil {
			continue
		}
		out = append(out, models.Schedule{ID: id, ClassID: e.ClassID, SubjectID: e.SubjectID, DayOfWeek: e.DayOfWeek,
			StartTime: e.StartTime, EndTime: e.EndTime, AcademicYearID: e.AcademicYearID})
	}
	return out, nil
}

func (f *fakeSchedules) GetByID(_ context.Context, id int64) (*models.Schedule, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperrors.ErrScheduleNotFound
	}
	return &models.Schedule{ID: id, ClassID: e.ClassID, SubjectID: e.SubjectID, DayOfWeek: e.DayOfWeek,
		StartTime: e.StartTime, EndTime: e.EndTime, AcademicYearID: e.AcademicYearID}, nil
}

func (f *fakeSchedules) HasConflict(_ context.Context, in models.ScheduleInput, excludeID int64) (bool, error) {
	for id, e := range f.entries {
		if id == excludeID || e.ClassID != in.ClassID || e.DayOfWeek != in.DayOfWeek || !sameYear(e.AcademicYearID, in.AcademicYearID) {
			continue
		}
		if e.StartTime < in.EndTime && e.EndTime > in.StartTime {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSchedules) Create(_ context.Context, in models.ScheduleInput) (int64, error) {
	return f.add(in), nil
}

func (f *fakeSchedules) Update(_ context.Context, id int64, in models.ScheduleInput) error {
	if _, ok := f.entries[id]; !ok {
		return apperrors.ErrScheduleNotFound
	}
	f.entries[id] = in
	return nil
}

func (f *fakeSchedules) Delete(_ context.Context, id int64) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeSchedules) ListForClass(_ context.Context, classID int64) ([]models.StudentScheduleEntry, error) {
	var out []models.StudentScheduleEntry
	for _, e := range f.entries {
		if e.ClassID == classID {
			out = append(out, models.StudentScheduleEntry{DayOfWeek: e.DayOfWeek, StartTime: e.StartTime, EndTime: e.EndTime, SubjectID: e.SubjectID})
		}
	}
	return out, nil
}

func (f *fakeSchedules) IsScheduled(_ context.Context, classID, subjectID int64, day string) (bool, error) {
	for _, e := range f.entries {
		if e.ClassID == classID && e.SubjectID == subjectID && (day == "" || e.DayOfWeek == day) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSchedules) ScheduledOn(_ context.Context, day string) ([]models.ScheduledPair, error) {
	seen := map[models.ScheduledPair]bool{}
	var out []models.ScheduledPair
	for _, e := range f.entries {
		p := models.ScheduledPair{ClassID: e.ClassID, SubjectID: e.SubjectID}
		if e.DayOfWeek == day && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeStudents struct {
	students map[int64]models.Student
	photos   map[int64][]byte
	nextID   int64
	created  []models.StudentInput
	// groups receives the class and year names ensured by ImportIntoGroup
	groups *fakeLookups
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{students: map[int64]models.Student{}, photos: map[int64][]byte{}}
}

func (f *fakeStudents) add(name string, classID int64, photo []byte) int64 {
	f.nextID++
	class := classID
	f.students[f.nextID] = models.Student{ID: f.nextID, Name: name, Sex: "Male", ClassID: &class}
	if photo != nil {
		f.photos[f.nextID] = photo
	}
	return f.nextID
}

func (f *fakeStudents) sorted() []models.Student {
	var out []models.Student
	for _, s := range f.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStudents) List(_ context.Context, flt models.StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.sorted() {
		if flt.ClassID != nil && (s.ClassID == nil || *s.ClassID != *flt.ClassID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStudents) Count(ctx context.Context, flt models.StudentFilter) (int64, error) {
	flt.Limit = 0
	all, _ := f.List(ctx, flt)
	return int64(len(all)), nil
}

func (f *fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

func (f *fakeStudents) Search(context.Context, string) ([]models.Student, error) {
	return f.sorted(), nil
}

func (f *fakeStudents) Create(_ context.Context, in models.StudentInput) (int64, error) {
	f.created = append(f.created, in)
	f.nextID++
	f.students[f.nextID] = models.Student{ID: f.nextID, Name: in.Name, Sex: in.Sex, Score: in.Score,
		Email: in.Email, Phone: in.Phone, ClassID: in.ClassID}
	return f.nextID, nil
}

func (f *fakeStudents) CreateMany(ctx context.Context, inputs []models.StudentInput) (int, error) {
	for _, in := range inputs {
		if _, err := f.Create(ctx, in); err != nil {
			return 0, err
		}
	}
	return len(inputs), nil
}

func (f *fakeStudents) ImportIntoGroup(ctx context.Context, className, yearName string, inputs []models.StudentInput) (int, error) {
	if f.groups == nil {
		f.groups = newFakeLookups()
	}
	classID, _ := f.groups.EnsureName(ctx, models.TableClass, className)
	yearID, _ := f.groups.EnsureName(ctx, models.TableAcademicYear, yearName)
	for i := range inputs {
		inputs[i].ClassID, inputs[i].AcademicYearID = &classID, &yearID
	}
	return f.CreateMany(ctx, inputs)
}

func (f *fakeStudents) Update(_ context.Context, id int64, in models.StudentInput) error {
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	f.students[id] = models.Student{ID: id, Name: in.Name, Sex: in.Sex, Score: in.Score, ClassID: in.ClassID}
	return nil
}

func (f *fakeStudents) Delete(_ context.Context, id int64) error {
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudents) GetPhoto(_ context.Context, id int64) ([]byte, error) {
	if _, ok := f.students[id]; !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	p, ok := f.photos[id]
	if !ok {
		return nil, apperrors.ErrPhotoNotFound
	}
	return p, nil
}

func (f *fakeStudents) SetPhoto(_ context.Context, id int64, photo []byte) error {
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	if photo == nil {
		delete(f.photos, id)
	} else {
		f.photos[id] = photo
	}
	return nil
}

func (f *fakeStudents) Roster(_ context.Context, classID int64, _ *int64) ([]models.RosterEntry, error) {
	var out []models.RosterEntry
	for _, s := range f.sorted() {
		if s.ClassID != nil && *s.ClassID == classID {
			out = append(out, models.RosterEntry{ID: s.ID, Name: s.Name, Sex: s.Sex})
		}
	}
	return out, nil
}

func (f *fakeStudents) FaceSamples(_ context.Context, classID int64) ([]models.FaceSample, error) {
	var out []models.FaceSample
	for _, s := range f.sorted() {
		if p, ok := f.photos[s.ID]; ok && s.ClassID != nil && *s.ClassID == classID {
			out = append(out, models.FaceSample{StudentID: s.ID, Name: s.Name, Photo: p})
		}
	}
	return out, nil
}

type attendanceKey struct {
	studentID, subjectID int64
	date                 string
}

type fakeAttendance struct {
	mu   sync.Mutex
	rows map[attendanceKey]models.Attendance
	// insertCalls counts InsertIfAbsent calls
	insertCalls int
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{rows: map[attendanceKey]models.Attendance{}}
}

func keyOf(a models.Attendance) attendanceKey {
	return attendanceKey{a.StudentID, a.SubjectID, a.AttendanceDate.Format(helpers.DateLayout)}
}

func (f *fakeAttendance) Upsert(ctx context.Context, a models.Attendance) error {
	_, err := f.UpsertMany(ctx, []models.Attendance{a})
	return err
}

func (f *fakeAttendance) UpsertMany(_ context.Context, rows []models.Attendance) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range rows {
		f.rows[keyOf(a)] = a
	}
	return len(rows), nil
}

func (f *fakeAttendance) InsertIfAbsent(_ context.Context, a models.Attendance) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if _, ok := f.rows[keyOf(a)]; ok {
		return false, nil
	}
	f.rows[keyOf(a)] = a
	return true, nil
}

func (f *fakeAttendance) Report(context.Context, int64, int64, time.Time, time.Time) ([]models.AttendanceReportRow, error) {
	return []models.AttendanceReportRow{}, nil
}

func (f *fakeAttendance) DailyLog(context.Context, time.Time, int64, *int64, int64) ([]models.DailyLogRow, error) {
	return []models.DailyLogRow{}, nil
}

func (f *fakeAttendance) Marks(_ context.Context, _, _, subjectID int64) ([]models.AttendanceMark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AttendanceMark
	for _, a := range f.rows {
		if a.SubjectID == subjectID {
			out = append(out, models.AttendanceMark{StudentID: a.StudentID, AttendanceDate: a.AttendanceDate, Status: string(a.Status)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendanceDate.Before(out[j].AttendanceDate) })
	return out, nil
}

func (f *fakeAttendance) SweepAbsent(_ context.Context, classID, subjectID int64, _ time.Time) (int64, error) {
	return classID*10 + subjectID, nil
}

type fakeEncoder struct {
	byImage map[string][]facerec.Face
	err     error
	calls   int
	mu      sync.Mutex
}

func (e *fakeEncoder) Encode(_ context.Context, image []byte) ([]facerec.Face, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.byImage[string(image)], nil
}

type publishedEvent struct {
	topic, eventType string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	closed []string
}

func (p *fakePublisher) Publish(topic, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic, eventType})
}

func (p *fakePublisher) CloseTopic(topic string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, topic)
}

type fakeStorage struct {
	saved []string
}

func (s *fakeStorage) Save(subPath, ext string, _ []byte) (string, error) {
	p := subPath + "/frame" + ext
	s.saved = append(s.saved, p)
	return p, nil
}

func (s *fakeStorage) Delete(string) error { return nil }

func (s *fakeStorage) FullPath(p string) (string, error) { return p, nil }
