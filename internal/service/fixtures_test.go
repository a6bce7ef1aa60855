package service

import (
	"go.uber.org/zap"

	"classgrid/backend/internal/model"
)

const testYear = "2024-25"

// deptFixture 一个小院系：两个班级、三位教师、三门课程、三间教室、四个时间段（含一个休息）
type deptFixture struct {
	f1, f2, f3     *model.User
	batchA, batchB *model.Batch
	ds, dbLab, phy *model.Subject
	r101, s201     *model.Classroom
	lab1           *model.Classroom
	mon1, mon2     *model.TimeSlot
	monBreak, tue1 *model.TimeSlot
}

func seedDepartment(s *mockStore) *deptFixture {
	fx := &deptFixture{
		f1: &model.User{UserID: "f1", Name: "Dr. Iyer", Email: "iyer@test.com", Role: model.RoleFaculty, IsActive: true},
		f2: &model.User{UserID: "f2", Name: "Dr. Rao", Email: "rao@test.com", Role: model.RoleFaculty, IsActive: true},
		f3: &model.User{UserID: "f3", Name: "Dr. Sen", Email: "sen@test.com", Role: model.RoleFaculty, IsActive: true},

		batchA: &model.Batch{BatchID: "batch-a", Name: "CS-A", Department: "CSE", Semester: 3, Year: 2, StudentCount: 60, AcademicYear: testYear, IsActive: true},
		batchB: &model.Batch{BatchID: "batch-b", Name: "CS-B", Department: "CSE", Semester: 3, Year: 2, StudentCount: 55, AcademicYear: testYear, IsActive: true},

		ds:    &model.Subject{SubjectID: "ds", Code: "CS201", Name: "Data Structures", Department: "CSE", Credits: 2, Kind: model.SubjectKindTheory, DurationMinutes: 50, IsActive: true},
		dbLab: &model.Subject{SubjectID: "dbl", Code: "CS202L", Name: "Database Lab", Department: "CSE", Credits: 1, Kind: model.SubjectKindLab, DurationMinutes: 50, IsActive: true},
		phy:   &model.Subject{SubjectID: "phy", Code: "PH101", Name: "Physics", Department: "PHY", Credits: 1, Kind: model.SubjectKindTheory, DurationMinutes: 50, IsActive: true},

		r101: &model.Classroom{ClassroomID: "r101", RoomNumber: "R101", Building: "Main", Capacity: 60, Kind: model.RoomKindLecture, IsAvailable: true},
		s201: &model.Classroom{ClassroomID: "s201", RoomNumber: "S201", Building: "Main", Capacity: 40, Kind: model.RoomKindSeminar, IsAvailable: true},
		lab1: &model.Classroom{ClassroomID: "lab1", RoomNumber: "LAB-1", Building: "Annex", Capacity: 30, Kind: model.RoomKindLab, IsAvailable: true},

		mon1:     &model.TimeSlot{TimeSlotID: "mon-1", Name: "P1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "09:50:00", DurationMinutes: 50, IsActive: true},
		mon2:     &model.TimeSlot{TimeSlotID: "mon-2", Name: "P2", DayOfWeek: 1, StartTime: "10:00:00", EndTime: "10:50:00", DurationMinutes: 50, IsActive: true},
		monBreak: &model.TimeSlot{TimeSlotID: "mon-break", Name: "Break", DayOfWeek: 1, StartTime: "11:00:00", EndTime: "11:15:00", DurationMinutes: 15, IsBreak: true, IsActive: true},
		tue1:     &model.TimeSlot{TimeSlotID: "tue-1", Name: "P1", DayOfWeek: 2, StartTime: "09:00:00", EndTime: "09:50:00", DurationMinutes: 50, IsActive: true},
	}

	s.users = append(s.users, fx.f1, fx.f2, fx.f3)
	s.batches = append(s.batches, fx.batchA, fx.batchB)
	s.subjects = append(s.subjects, fx.ds, fx.dbLab, fx.phy)
	s.rooms = append(s.rooms, fx.r101, fx.s201, fx.lab1)
	s.slots = append(s.slots, fx.mon1, fx.mon2, fx.monBreak, fx.tue1)
	return fx
}

func addLink(s *mockStore, id string, faculty *model.User, subject *model.Subject, batch *model.Batch) {
	s.links = append(s.links, &model.FacultySubject{
		FacultySubjectID: id,
		FacultyID:        faculty.UserID,
		SubjectID:        subject.SubjectID,
		BatchID:          batch.BatchID,
		AcademicYear:     batch.AcademicYear,
		IsActive:         true,
	})
}

func addEntry(s *mockStore, id string, batch *model.Batch, subject *model.Subject, faculty *model.User, room *model.Classroom, slot *model.TimeSlot, status string) {
	s.entries = append(s.entries, &model.TimetableEntry{
		EntryID:      id,
		BatchID:      batch.BatchID,
		SubjectID:    subject.SubjectID,
		FacultyID:    faculty.UserID,
		ClassroomID:  room.ClassroomID,
		TimeSlotID:   slot.TimeSlotID,
		AcademicYear: testYear,
		Status:       status,
	})
}

func countEntries(s *mockStore, status string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if status == "" || e.Status == status {
			n++
		}
	}
	return n
}

func setupTestTimetableService(lock GenerationLock) (TimetableService, *mockStore, *deptFixture) {
	store := newMockStore()
	fx := seedDepartment(store)
	svc := NewTimetableService(newMockRepository(store), lock, 0, zap.NewNop())
	return svc, store, fx
}
