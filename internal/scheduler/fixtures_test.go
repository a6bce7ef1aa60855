package scheduler

import (
	"fmt"

	"classgrid/backend/internal/model"
)

const testYear = "2024-25"

func slot(id string, day int, start string) model.TimeSlot {
	return model.TimeSlot{TimeSlotID: id, Name: id, DayOfWeek: day, StartTime: start, IsActive: true}
}

func room(id, kind string) model.Classroom {
	return model.Classroom{ClassroomID: id, RoomNumber: id, Kind: kind, Capacity: 60, IsAvailable: true}
}

func assignment(id, batch, subject, faculty, kind string, credits int) Assignment {
	return Assignment{
		AssignmentID: id,
		BatchID:      batch,
		SubjectID:    subject,
		FacultyID:    faculty,
		SubjectKind:  kind,
		Credits:      credits,
	}
}

func entry(id, batch, faculty, classroom, timeSlot string) model.TimetableEntry {
	return model.TimetableEntry{
		EntryID:      id,
		BatchID:      batch,
		SubjectID:    "subj-" + id,
		FacultyID:    faculty,
		ClassroomID:  classroom,
		TimeSlotID:   timeSlot,
		AcademicYear: testYear,
		Status:       model.EntryStatusPublished,
	}
}

func fourSlots() []model.TimeSlot {
	return []model.TimeSlot{
		slot("mon-1", 1, "09:00"),
		slot("mon-2", 1, "10:00"),
		slot("tue-1", 2, "09:00"),
		slot("tue-2", 2, "10:00"),
	}
}

// totalCredits 所有分配的课时总数
func totalCredits(asgs []Assignment) int {
	n := 0
	for _, a := range asgs {
		n += a.Credits
	}
	return n
}

// busyLoad 构造一个较满的学期：多个班级共享教师与少量教室
func busyLoad() Input {
	var asgs []Assignment
	kinds := []string{model.SubjectKindTheory, model.SubjectKindLab, model.SubjectKindPractical}
	for b := 0; b < 4; b++ {
		for s := 0; s < 3; s++ {
			asgs = append(asgs, assignment(
				fmt.Sprintf("a-%d-%d", b, s),
				fmt.Sprintf("batch-%d", b),
				fmt.Sprintf("subj-%d", s),
				fmt.Sprintf("fac-%d", (b+s)%3),
				kinds[s],
				s+2,
			))
		}
	}
	return Input{
		AcademicYear: testYear,
		Assignments:  asgs,
		Classrooms: []model.Classroom{
			room("r101", model.RoomKindLecture),
			room("lab-1", model.RoomKindLab),
			room("sem-1", model.RoomKindSeminar),
		},
		TimeSlots: fourSlots(),
		Existing: []model.TimetableEntry{
			entry("pub-1", "batch-0", "fac-9", "r101", "mon-1"),
		},
	}
}
