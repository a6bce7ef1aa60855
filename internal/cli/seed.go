package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/service"
)

// Fixture 基础数据文件，教学分配以邮箱、班级名与课程代码引用其他记录
type Fixture struct {
	AcademicYear string              `yaml:"academic_year"`
	Users        []FixtureUser       `yaml:"users"`
	Batches      []FixtureBatch      `yaml:"batches"`
	Subjects     []FixtureSubject    `yaml:"subjects"`
	Classrooms   []FixtureClassroom  `yaml:"classrooms"`
	TimeSlots    []FixtureTimeSlot   `yaml:"time_slots"`
	Assignments  []FixtureAssignment `yaml:"assignments"`
}

type FixtureUser struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
}

type FixtureBatch struct {
	Name         string `yaml:"name"`
	Department   string `yaml:"department"`
	Semester     int    `yaml:"semester"`
	Year         int    `yaml:"year"`
	StudentCount int    `yaml:"student_count"`
}

type FixtureSubject struct {
	Code            string `yaml:"code"`
	Name            string `yaml:"name"`
	Department      string `yaml:"department"`
	Credits         int    `yaml:"credits"`
	Kind            string `yaml:"kind"`
	DurationMinutes int    `yaml:"duration_minutes"`
}

type FixtureClassroom struct {
	RoomNumber string   `yaml:"room_number"`
	Building   string   `yaml:"building"`
	Capacity   int      `yaml:"capacity"`
	Kind       string   `yaml:"kind"`
	Equipment  []string `yaml:"equipment"`
}

type FixtureTimeSlot struct {
	Name      string `yaml:"name"`
	DayOfWeek int    `yaml:"day_of_week"`
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
	IsBreak   bool   `yaml:"is_break"`
}

type FixtureAssignment struct {
	Faculty string `yaml:"faculty"` // 教师邮箱
	Subject string `yaml:"subject"` // 课程代码
	Batch   string `yaml:"batch"`   // 班级名
}

// SeedSummary 导入统计
type SeedSummary struct {
	Created map[string]int `json:"created" yaml:"created"`
	Skipped map[string]int `json:"skipped" yaml:"skipped"`
}

// fixtureRequests 校验通过后的请求集合
type fixtureRequests struct {
	users       []dto.CreateUserRequest
	batches     []dto.CreateBatchRequest
	subjects    []dto.CreateSubjectRequest
	classrooms  []dto.CreateClassroomRequest
	timeSlots   []dto.CreateTimeSlotRequest
	assignments []FixtureAssignment
}

// NewSeedCommand 从 YAML 文件导入基础数据，已存在的记录跳过
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "导入用户、班级、课程、教室、时间段与教学分配",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "打开数据文件失败", Err: err}
			}
			defer f.Close()

			fx, err := LoadFixture(f)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "数据文件不合法", Err: err}
			}
			reqs, err := fx.requests()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "数据文件不合法", Err: err}
			}

			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := applyFixture(cmd.Context(), a.svc, fx.AcademicYear, reqs)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "导入失败", Err: err}
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, summary)
		},
	}
}

// LoadFixture 解析数据文件，未知字段视为错误
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	return &fx, nil
}

func newFixtureValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	_ = dto.RegisterValidators(v)
	return v
}

// requests 将数据文件转换为创建请求，并按 HTTP 接口相同的规则校验
func (fx *Fixture) requests() (*fixtureRequests, error) {
	v := newFixtureValidator()
	out := &fixtureRequests{assignments: fx.Assignments}

	check := func(kind string, i int, req interface{}) error {
		if err := v.Struct(req); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		return nil
	}

	for i, u := range fx.Users {
		req := dto.CreateUserRequest{Name: u.Name, Email: u.Email, Password: u.Password, Role: u.Role, Department: u.Department}
		if err := check("users", i, &req); err != nil {
			return nil, err
		}
		out.users = append(out.users, req)
	}

	for i, b := range fx.Batches {
		req := dto.CreateBatchRequest{
			Name:         b.Name,
			Department:   b.Department,
			Semester:     b.Semester,
			Year:         b.Year,
			StudentCount: b.StudentCount,
			AcademicYear: fx.AcademicYear,
		}
		if err := check("batches", i, &req); err != nil {
			return nil, err
		}
		out.batches = append(out.batches, req)
	}

	for i, s := range fx.Subjects {
		req := dto.CreateSubjectRequest(s)
		if err := check("subjects", i, &req); err != nil {
			return nil, err
		}
		out.subjects = append(out.subjects, req)
	}

	for i, c := range fx.Classrooms {
		req := dto.CreateClassroomRequest{RoomNumber: c.RoomNumber, Building: c.Building, Capacity: c.Capacity, Kind: c.Kind}
		if len(c.Equipment) > 0 {
			raw, err := json.Marshal(c.Equipment)
			if err != nil {
				return nil, fmt.Errorf("classrooms[%d]: %w", i, err)
			}
			req.Equipment = datatypes.JSON(raw)
		}
		if err := check("classrooms", i, &req); err != nil {
			return nil, err
		}
		out.classrooms = append(out.classrooms, req)
	}

	for i, s := range fx.TimeSlots {
		req := dto.CreateTimeSlotRequest(s)
		if err := check("time_slots", i, &req); err != nil {
			return nil, err
		}
		out.timeSlots = append(out.timeSlots, req)
	}

	for i, a := range fx.Assignments {
		if a.Faculty == "" || a.Subject == "" || a.Batch == "" {
			return nil, fmt.Errorf("assignments[%d]: faculty、subject、batch 均不能为空", i)
		}
	}

	if len(fx.Batches) > 0 || len(fx.Assignments) > 0 {
		if err := v.Var(fx.AcademicYear, "required,academic_year"); err != nil {
			return nil, fmt.Errorf("academic_year: %w", err)
		}
	}

	return out, nil
}

// applyFixture 依次通过 Service 层写入，唯一约束冲突计为跳过
func applyFixture(ctx context.Context, svc *service.Service, year string, reqs *fixtureRequests) (*SeedSummary, error) {
	summary := &SeedSummary{Created: map[string]int{}, Skipped: map[string]int{}}
	tally := func(kind string, err error, exists error) error {
		switch {
		case err == nil:
			summary.Created[kind]++
		case errors.Is(err, exists):
			summary.Skipped[kind]++
		default:
			return fmt.Errorf("写入 %s 失败: %w", kind, err)
		}
		return nil
	}

	for i := range reqs.users {
		_, err := svc.User.Create(ctx, &reqs.users[i])
		if err := tally("users", err, service.ErrEmailExists); err != nil {
			return nil, err
		}
	}
	for i := range reqs.batches {
		_, err := svc.Batch.Create(ctx, &reqs.batches[i])
		if err := tally("batches", err, service.ErrBatchExists); err != nil {
			return nil, err
		}
	}
	for i := range reqs.subjects {
		_, err := svc.Subject.Create(ctx, &reqs.subjects[i])
		if err := tally("subjects", err, service.ErrSubjectCodeExists); err != nil {
			return nil, err
		}
	}
	for i := range reqs.classrooms {
		_, err := svc.Classroom.Create(ctx, &reqs.classrooms[i])
		if err := tally("classrooms", err, service.ErrRoomNumberExists); err != nil {
			return nil, err
		}
	}
	for i := range reqs.timeSlots {
		_, err := svc.TimeSlot.Create(ctx, &reqs.timeSlots[i])
		if err := tally("time_slots", err, service.ErrTimeSlotExists); err != nil {
			return nil, err
		}
	}

	if len(reqs.assignments) == 0 {
		return summary, nil
	}

	// 按自然键解析教学分配引用
	users, err := svc.User.List(ctx, &dto.UserListRequest{Role: "faculty"})
	if err != nil {
		return nil, err
	}
	batches, err := svc.Batch.List(ctx, &dto.BatchListRequest{AcademicYear: year})
	if err != nil {
		return nil, err
	}
	subjects, err := svc.Subject.List(ctx, &dto.SubjectListRequest{})
	if err != nil {
		return nil, err
	}
	facultyByEmail := lo.SliceToMap(users, func(u dto.UserResponse) (string, string) { return u.Email, u.ID })
	batchByName := lo.SliceToMap(batches, func(b dto.BatchResponse) (string, string) { return b.Name, b.ID })
	subjectByCode := lo.SliceToMap(subjects, func(s dto.SubjectResponse) (string, string) { return s.Code, s.ID })

	for i, a := range reqs.assignments {
		facultyID, ok := facultyByEmail[a.Faculty]
		if !ok {
			return nil, fmt.Errorf("assignments[%d]: 教师 %q 不存在", i, a.Faculty)
		}
		batchID, ok := batchByName[a.Batch]
		if !ok {
			return nil, fmt.Errorf("assignments[%d]: 班级 %q 不存在", i, a.Batch)
		}
		subjectID, ok := subjectByCode[a.Subject]
		if !ok {
			return nil, fmt.Errorf("assignments[%d]: 课程 %q 不存在", i, a.Subject)
		}

		_, err := svc.Assignment.Create(ctx, &dto.CreateAssignmentRequest{
			FacultyID:    facultyID,
			SubjectID:    subjectID,
			BatchID:      batchID,
			AcademicYear: year,
		})
		if err := tally("assignments", err, service.ErrAssignmentExists); err != nil {
			return nil, err
		}
	}

	return summary, nil
}
