package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
	pkgerrors "classgrid/backend/pkg/errors"
)

// ── 内存数据集 ──
// 所有 mock 仓储共享一个 mockStore，按插入顺序保存（等价于 created_at 排序），
// 唯一约束冲突返回 gorm.ErrDuplicatedKey，与开启 TranslateError 的 gorm 行为一致。

type mockStore struct {
	mu  sync.Mutex
	seq int

	users    []*model.User
	batches  []*model.Batch
	subjects []*model.Subject
	rooms    []*model.Classroom
	slots    []*model.TimeSlot
	links    []*model.FacultySubject
	entries  []*model.TimetableEntry

	// 故障注入
	replaceErr error
}

func newMockStore() *mockStore {
	return &mockStore{}
}

// newMockRepository 组装基于 mockStore 的 Repository 聚合
func newMockRepository(s *mockStore) *repository.Repository {
	return &repository.Repository{
		User:           &mockUserRepo{s: s},
		Batch:          &mockBatchRepo{s: s},
		Subject:        &mockSubjectRepo{s: s},
		Classroom:      &mockClassroomRepo{s: s},
		TimeSlot:       &mockTimeSlotRepo{s: s},
		FacultySubject: &mockFacultySubjectRepo{s: s},
		TimetableEntry: &mockEntryRepo{s: s},
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

func find[T any](items []*T, match func(*T) bool) (int, *T) {
	for i, it := range items {
		if match(it) {
			return i, it
		}
	}
	return -1, nil
}

func removeAt[T any](items []*T, i int) []*T {
	return append(items[:i], items[i+1:]...)
}

// ── 关联预加载 ──

func (s *mockStore) batchByID(id string) *model.Batch {
	if _, b := find(s.batches, func(b *model.Batch) bool { return b.BatchID == id }); b != nil {
		cp := *b
		return &cp
	}
	return nil
}

func (s *mockStore) subjectByID(id string) *model.Subject {
	if _, sub := find(s.subjects, func(x *model.Subject) bool { return x.SubjectID == id }); sub != nil {
		cp := *sub
		return &cp
	}
	return nil
}

func (s *mockStore) userByID(id string) *model.User {
	if _, u := find(s.users, func(u *model.User) bool { return u.UserID == id }); u != nil {
		cp := *u
		return &cp
	}
	return nil
}

func (s *mockStore) roomByID(id string) *model.Classroom {
	if _, r := find(s.rooms, func(r *model.Classroom) bool { return r.ClassroomID == id }); r != nil {
		cp := *r
		return &cp
	}
	return nil
}

func (s *mockStore) slotByID(id string) *model.TimeSlot {
	if _, ts := find(s.slots, func(ts *model.TimeSlot) bool { return ts.TimeSlotID == id }); ts != nil {
		cp := *ts
		return &cp
	}
	return nil
}

func (s *mockStore) withRelations(e model.TimetableEntry) model.TimetableEntry {
	e.Batch = s.batchByID(e.BatchID)
	e.Subject = s.subjectByID(e.SubjectID)
	e.Faculty = s.userByID(e.FacultyID)
	e.Classroom = s.roomByID(e.ClassroomID)
	e.TimeSlot = s.slotByID(e.TimeSlotID)
	return e
}

func (s *mockStore) linkWithRelations(l model.FacultySubject) model.FacultySubject {
	l.Faculty = s.userByID(l.FacultyID)
	l.Subject = s.subjectByID(l.SubjectID)
	l.Batch = s.batchByID(l.BatchID)
	return l
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, u := find(m.s.users, func(u *model.User) bool { return u.Email == user.Email }); u != nil {
		return gorm.ErrDuplicatedKey
	}
	if user.UserID == "" {
		user.UserID = m.s.nextID("user")
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.s.users = append(m.s.users, &cp)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u := m.s.userByID(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, u := find(m.s.users, func(u *model.User) bool { return u.Email == email }); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.users, func(u *model.User) bool { return u.UserID == user.UserID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.s.users[i] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.User
	for _, u := range m.s.users {
		if role == "" || u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock BatchRepository ──

type mockBatchRepo struct{ s *mockStore }

func (m *mockBatchRepo) Create(_ context.Context, batch *model.Batch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, b := find(m.s.batches, func(b *model.Batch) bool {
		return b.Name == batch.Name && b.Department == batch.Department && b.AcademicYear == batch.AcademicYear
	}); b != nil {
		return gorm.ErrDuplicatedKey
	}
	if batch.BatchID == "" {
		batch.BatchID = m.s.nextID("batch")
	}
	cp := *batch
	m.s.batches = append(m.s.batches, &cp)
	return nil
}

func (m *mockBatchRepo) GetByID(_ context.Context, id string) (*model.Batch, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if b := m.s.batchByID(id); b != nil {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBatchRepo) List(_ context.Context, academicYear string) ([]model.Batch, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Batch
	for _, b := range m.s.batches {
		if academicYear == "" || b.AcademicYear == academicYear {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBatchRepo) ListActive(ctx context.Context, academicYear string) ([]model.Batch, error) {
	all, _ := m.List(ctx, academicYear)
	var result []model.Batch
	for _, b := range all {
		if b.IsActive {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBatchRepo) Update(_ context.Context, batch *model.Batch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.batches, func(b *model.Batch) bool { return b.BatchID == batch.BatchID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *batch
	m.s.batches[i] = &cp
	return nil
}

func (m *mockBatchRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.batches, func(b *model.Batch) bool { return b.BatchID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.batches = removeAt(m.s.batches, i)
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ s *mockStore }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, x := find(m.s.subjects, func(x *model.Subject) bool { return x.Code == subject.Code }); x != nil {
		return gorm.ErrDuplicatedKey
	}
	if subject.SubjectID == "" {
		subject.SubjectID = m.s.nextID("subject")
	}
	cp := *subject
	m.s.subjects = append(m.s.subjects, &cp)
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if sub := m.s.subjectByID(id); sub != nil {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, x := find(m.s.subjects, func(x *model.Subject) bool { return x.Code == code }); x != nil {
		cp := *x
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context, department string) ([]model.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Subject
	for _, x := range m.s.subjects {
		if department == "" || x.Department == department {
			result = append(result, *x)
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.subjects, func(x *model.Subject) bool { return x.SubjectID == subject.SubjectID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *subject
	m.s.subjects[i] = &cp
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.subjects, func(x *model.Subject) bool { return x.SubjectID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.subjects = removeAt(m.s.subjects, i)
	return nil
}

// ── Mock ClassroomRepository ──

type mockClassroomRepo struct{ s *mockStore }

func (m *mockClassroomRepo) Create(_ context.Context, room *model.Classroom) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, r := find(m.s.rooms, func(r *model.Classroom) bool { return r.RoomNumber == room.RoomNumber }); r != nil {
		return gorm.ErrDuplicatedKey
	}
	if room.ClassroomID == "" {
		room.ClassroomID = m.s.nextID("room")
	}
	cp := *room
	m.s.rooms = append(m.s.rooms, &cp)
	return nil
}

func (m *mockClassroomRepo) GetByID(_ context.Context, id string) (*model.Classroom, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if r := m.s.roomByID(id); r != nil {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) GetByRoomNumber(_ context.Context, roomNumber string) (*model.Classroom, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, r := find(m.s.rooms, func(r *model.Classroom) bool { return r.RoomNumber == roomNumber }); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// List 按 room_number 排序
func (m *mockClassroomRepo) List(_ context.Context) ([]model.Classroom, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := make([]model.Classroom, 0, len(m.s.rooms))
	for _, r := range m.s.rooms {
		result = append(result, *r)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].RoomNumber < result[j].RoomNumber })
	return result, nil
}

func (m *mockClassroomRepo) ListAvailable(ctx context.Context) ([]model.Classroom, error) {
	all, _ := m.List(ctx)
	var result []model.Classroom
	for _, r := range all {
		if r.IsAvailable {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockClassroomRepo) Update(_ context.Context, room *model.Classroom) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.rooms, func(r *model.Classroom) bool { return r.ClassroomID == room.ClassroomID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *room
	m.s.rooms[i] = &cp
	return nil
}

func (m *mockClassroomRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.rooms, func(r *model.Classroom) bool { return r.ClassroomID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.rooms = removeAt(m.s.rooms, i)
	return nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct{ s *mockStore }

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ts := find(m.s.slots, func(ts *model.TimeSlot) bool {
		return ts.DayOfWeek == slot.DayOfWeek && ts.StartTime == slot.StartTime
	}); ts != nil {
		return gorm.ErrDuplicatedKey
	}
	if slot.TimeSlotID == "" {
		slot.TimeSlotID = m.s.nextID("slot")
	}
	cp := *slot
	m.s.slots = append(m.s.slots, &cp)
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if ts := m.s.slotByID(id); ts != nil {
		return ts, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// List 按 day_of_week, start_time 排序
func (m *mockTimeSlotRepo) List(_ context.Context, dayOfWeek *int) ([]model.TimeSlot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.TimeSlot
	for _, ts := range m.s.slots {
		if dayOfWeek != nil && ts.DayOfWeek != *dayOfWeek {
			continue
		}
		result = append(result, *ts)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockTimeSlotRepo) ListActiveNonBreak(ctx context.Context) ([]model.TimeSlot, error) {
	all, _ := m.List(ctx, nil)
	var result []model.TimeSlot
	for _, ts := range all {
		if ts.IsActive && !ts.IsBreak {
			result = append(result, ts)
		}
	}
	return result, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.slots, func(ts *model.TimeSlot) bool { return ts.TimeSlotID == slot.TimeSlotID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *slot
	m.s.slots[i] = &cp
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.slots, func(ts *model.TimeSlot) bool { return ts.TimeSlotID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.slots = removeAt(m.s.slots, i)
	return nil
}

// ── Mock FacultySubjectRepository ──

type mockFacultySubjectRepo struct{ s *mockStore }

func (m *mockFacultySubjectRepo) Create(_ context.Context, fs *model.FacultySubject) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, l := find(m.s.links, func(l *model.FacultySubject) bool {
		return l.FacultyID == fs.FacultyID && l.SubjectID == fs.SubjectID &&
			l.BatchID == fs.BatchID && l.AcademicYear == fs.AcademicYear
	}); l != nil {
		return gorm.ErrDuplicatedKey
	}
	if fs.FacultySubjectID == "" {
		fs.FacultySubjectID = m.s.nextID("link")
	}
	cp := *fs
	cp.Faculty, cp.Subject, cp.Batch = nil, nil, nil
	m.s.links = append(m.s.links, &cp)
	return nil
}

func (m *mockFacultySubjectRepo) GetByID(_ context.Context, id string) (*model.FacultySubject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, l := find(m.s.links, func(l *model.FacultySubject) bool { return l.FacultySubjectID == id }); l != nil {
		cp := m.s.linkWithRelations(*l)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacultySubjectRepo) List(_ context.Context, filter repository.FacultySubjectFilter) ([]model.FacultySubject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.FacultySubject
	for _, l := range m.s.links {
		if filter.AcademicYear != "" && l.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.FacultyID != "" && l.FacultyID != filter.FacultyID {
			continue
		}
		if filter.BatchID != "" && l.BatchID != filter.BatchID {
			continue
		}
		result = append(result, m.s.linkWithRelations(*l))
	}
	return result, nil
}

func (m *mockFacultySubjectRepo) ListActive(ctx context.Context, academicYear string) ([]model.FacultySubject, error) {
	all, _ := m.List(ctx, repository.FacultySubjectFilter{AcademicYear: academicYear})
	var result []model.FacultySubject
	for _, l := range all {
		if !l.IsActive || l.Batch == nil || l.Subject == nil || l.Faculty == nil {
			continue
		}
		if !l.Batch.IsActive || l.Batch.AcademicYear != academicYear || !l.Subject.IsActive || !l.Faculty.IsActive {
			continue
		}
		result = append(result, l)
	}
	return result, nil
}

func (m *mockFacultySubjectRepo) Update(_ context.Context, fs *model.FacultySubject) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.links, func(l *model.FacultySubject) bool { return l.FacultySubjectID == fs.FacultySubjectID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	cp := *fs
	cp.Faculty, cp.Subject, cp.Batch = nil, nil, nil
	m.s.links[i] = &cp
	return nil
}

func (m *mockFacultySubjectRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.links, func(l *model.FacultySubject) bool { return l.FacultySubjectID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.links = removeAt(m.s.links, i)
	return nil
}

// ── Mock TimetableEntryRepository ──

type mockEntryRepo struct{ s *mockStore }

// violatesUnique 模拟三条 (x, time_slot_id, academic_year) 唯一约束
func (s *mockStore) violatesUnique(e *model.TimetableEntry) bool {
	_, hit := find(s.entries, func(x *model.TimetableEntry) bool {
		if x.EntryID == e.EntryID || x.TimeSlotID != e.TimeSlotID || x.AcademicYear != e.AcademicYear {
			return false
		}
		return x.BatchID == e.BatchID || x.FacultyID == e.FacultyID || x.ClassroomID == e.ClassroomID
	})
	return hit != nil
}

func (s *mockStore) insertEntry(e *model.TimetableEntry) error {
	if e.EntryID == "" {
		e.EntryID = s.nextID("entry")
	}
	if e.Status == "" {
		e.Status = model.EntryStatusDraft
	}
	if s.violatesUnique(e) {
		return gorm.ErrDuplicatedKey
	}
	cp := *e
	cp.Batch, cp.Subject, cp.Faculty, cp.Classroom, cp.TimeSlot = nil, nil, nil, nil, nil
	s.entries = append(s.entries, &cp)
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id string) (*model.TimetableEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, e := find(m.s.entries, func(e *model.TimetableEntry) bool { return e.EntryID == id }); e != nil {
		cp := m.s.withRelations(*e)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) Create(_ context.Context, entry *model.TimetableEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.insertEntry(entry)
}

func (m *mockEntryRepo) Update(_ context.Context, entry *model.TimetableEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.entries, func(e *model.TimetableEntry) bool { return e.EntryID == entry.EntryID })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	if m.s.violatesUnique(entry) {
		return gorm.ErrDuplicatedKey
	}
	cp := *entry
	cp.Batch, cp.Subject, cp.Faculty, cp.Classroom, cp.TimeSlot = nil, nil, nil, nil, nil
	m.s.entries[i] = &cp
	return nil
}

func (m *mockEntryRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, _ := find(m.s.entries, func(e *model.TimetableEntry) bool { return e.EntryID == id })
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	m.s.entries = removeAt(m.s.entries, i)
	return nil
}

func (m *mockEntryRepo) ListByYear(_ context.Context, academicYear string) ([]model.TimetableEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.TimetableEntry
	for _, e := range m.s.entries {
		if e.AcademicYear == academicYear {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEntryRepo) ListBySlot(_ context.Context, academicYear, timeSlotID string) ([]model.TimetableEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.TimetableEntry
	for _, e := range m.s.entries {
		if e.AcademicYear == academicYear && e.TimeSlotID == timeSlotID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEntryRepo) List(_ context.Context, filter repository.EntryFilter) ([]model.TimetableEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.TimetableEntry
	for _, e := range m.s.entries {
		switch {
		case filter.AcademicYear != "" && e.AcademicYear != filter.AcademicYear,
			filter.BatchID != "" && e.BatchID != filter.BatchID,
			filter.FacultyID != "" && e.FacultyID != filter.FacultyID,
			filter.ClassroomID != "" && e.ClassroomID != filter.ClassroomID,
			filter.Status != "" && e.Status != filter.Status:
			continue
		}
		result = append(result, m.s.withRelations(*e))
	}
	return result, nil
}

func (m *mockEntryRepo) InsertMany(_ context.Context, entries []model.TimetableEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range entries {
		if err := m.s.insertEntry(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockEntryRepo) DeleteDraftsByYear(_ context.Context, academicYear string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.deleteDrafts(academicYear), nil
}

func (s *mockStore) deleteDrafts(academicYear string) int64 {
	var kept []*model.TimetableEntry
	var removed int64
	for _, e := range s.entries {
		if e.AcademicYear == academicYear && e.Status == model.EntryStatusDraft {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// ReplaceDrafts 失败时恢复原条目集合，模拟事务回滚
func (m *mockEntryRepo) ReplaceDrafts(_ context.Context, academicYear string, entries []model.TimetableEntry) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.replaceErr != nil {
		return 0, m.s.replaceErr
	}

	snapshot := append([]*model.TimetableEntry(nil), m.s.entries...)
	removed := m.s.deleteDrafts(academicYear)
	for i := range entries {
		if err := m.s.insertEntry(&entries[i]); err != nil {
			m.s.entries = snapshot
			return 0, err
		}
	}
	return removed, nil
}

func (m *mockEntryRepo) BulkUpdateStatus(_ context.Context, academicYear, from, to string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, e := range m.s.entries {
		if e.AcademicYear == academicYear && e.Status == from {
			e.Status = to
			n++
		}
	}
	return n, nil
}

// ── Mock GenerationLock / TokenBlacklist ──

type mockLock struct {
	mu    sync.Mutex
	held  map[string]bool
	err   error
	calls int
}

func newMockLock() *mockLock {
	return &mockLock{held: make(map[string]bool)}
}

func (l *mockLock) Lock(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if b.err != nil {
		return b.err
	}
	b.tokens[jti] = ttl
	return nil
}
