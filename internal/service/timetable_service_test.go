package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/scheduler"
)

// ── Generate 测试 ──

func TestTimetableService_Generate_Success(t *testing.T) {
	lock := newMockLock()
	svc, store, fx := setupTestTimetableService(lock)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)

	resp, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if !resp.Success || resp.EntriesCreated != 3 || len(resp.Conflicts) != 0 {
		t.Fatalf("期望 3 条条目、无冲突，实际: %+v", resp)
	}
	if resp.Message != "已生成 3 条课表条目" {
		t.Errorf("message 不符: %s", resp.Message)
	}
	if n := countEntries(store, model.EntryStatusDraft); n != 3 {
		t.Errorf("期望持久化 3 条草稿，实际=%d", n)
	}
	for _, e := range store.entries {
		if e.TimeSlotID == fx.monBreak.TimeSlotID {
			t.Errorf("休息时段不应排课: %+v", e)
		}
	}
	if len(lock.held) != 0 {
		t.Error("生成结束后应释放锁")
	}
}

func TestTimetableService_Generate_ReportsUnplacedSessions(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)
	addLink(store, "link-3", fx.f1, fx.ds, fx.batchB)

	resp, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if err != nil {
		t.Fatalf("排课冲突不应作为错误返回: %v", err)
	}
	if !resp.Success {
		t.Error("存在未排课时 success 仍应为 true")
	}
	if resp.EntriesCreated != 4 || len(resp.Conflicts) != 1 {
		t.Fatalf("期望 4 条条目、1 个冲突，实际: %d / %d", resp.EntriesCreated, len(resp.Conflicts))
	}

	c := resp.Conflicts[0]
	if c.Batch != "CS-B" || c.Subject != "Data Structures" || c.Faculty != "Dr. Iyer" || c.SessionIndex != 1 {
		t.Errorf("冲突描述不符: %+v", c)
	}
	if c.Reason != scheduler.ReasonNoAvailableSlot {
		t.Errorf("冲突原因不符: %s", c.Reason)
	}
	if !strings.Contains(resp.Message, "1 节课无法安排") {
		t.Errorf("message 应提示未排课时: %s", resp.Message)
	}
}

func TestTimetableService_Generate_ReplacesDrafts(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)

	for i := 0; i < 2; i++ {
		if _, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear}); err != nil {
			t.Fatalf("第 %d 次 Generate 失败: %v", i+1, err)
		}
	}
	if n := countEntries(store, ""); n != 3 {
		t.Errorf("重复生成应替换草稿而非累加，实际条目数=%d", n)
	}
}

func TestTimetableService_Generate_KeepsApprovedEntries(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)
	addEntry(store, "approved-1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusApproved)

	resp, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}

	// 已审核条目占用 mon-1，批次 A 只剩 mon-2 / tue-1 两个时段
	if resp.EntriesCreated != 2 || len(resp.Conflicts) != 1 {
		t.Fatalf("期望 2 条条目、1 个冲突，实际: %d / %d", resp.EntriesCreated, len(resp.Conflicts))
	}
	if n := countEntries(store, model.EntryStatusApproved); n != 1 {
		t.Errorf("已审核条目不应被删除或降级，实际=%d", n)
	}
	for _, e := range store.entries {
		if e.Status == model.EntryStatusDraft && e.TimeSlotID == fx.mon1.TimeSlotID {
			t.Errorf("新草稿不应占用已审核条目的时段: %+v", e)
		}
	}
}

func TestTimetableService_Generate_SkipsInactiveBatchAndSubject(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	fx.batchB.IsActive = false
	fx.phy.IsActive = false
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchB)
	addLink(store, "link-2", fx.f2, fx.phy, fx.batchA)

	resp, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if resp.EntriesCreated != 0 || len(resp.Conflicts) != 0 {
		t.Errorf("停用班级/课程不应排课，实际: %+v", resp)
	}
	if n := countEntries(store, ""); n != 0 {
		t.Errorf("期望无条目，实际=%d", n)
	}
}

func TestTimetableService_Generate_SkipsInactiveFaculty(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	fx.f1.IsActive = false
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)

	resp, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if resp.EntriesCreated != 1 {
		t.Fatalf("仅在职教师的实验课应排入，实际=%d", resp.EntriesCreated)
	}
	for _, e := range store.entries {
		if e.FacultyID == fx.f1.UserID {
			t.Errorf("停用教师不应出现在课表中: %+v", e)
		}
	}
}

func TestTimetableService_Generate_InvalidYear(t *testing.T) {
	lock := newMockLock()
	svc, _, _ := setupTestTimetableService(lock)

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: "2024"})
	if !errors.Is(err, scheduler.ErrInvalidInput) || !errors.Is(err, scheduler.ErrInvalidAcademicYear) {
		t.Errorf("期望 ErrInvalidAcademicYear，实际: %v", err)
	}
	if lock.calls != 0 {
		t.Error("输入错误时不应尝试加锁")
	}
}

func TestTimetableService_Generate_NoClassrooms(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	for _, r := range store.rooms {
		r.IsAvailable = false
	}

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if !errors.Is(err, scheduler.ErrNoClassrooms) {
		t.Errorf("期望 ErrNoClassrooms，实际: %v", err)
	}
}

func TestTimetableService_Generate_NoTimeSlots(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	for _, ts := range store.slots {
		ts.IsActive = false
	}

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if !errors.Is(err, scheduler.ErrNoTimeSlots) {
		t.Errorf("期望 ErrNoTimeSlots，实际: %v", err)
	}
}

func TestTimetableService_Generate_LockHeld(t *testing.T) {
	lock := newMockLock()
	lock.held["timetable:generate:"+testYear] = true
	svc, store, fx := setupTestTimetableService(lock)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("期望 ErrGenerationInProgress，实际: %v", err)
	}
	if n := countEntries(store, ""); n != 0 {
		t.Errorf("未获得锁时不应写入，实际条目数=%d", n)
	}

	// 进程内锁应已释放
	delete(lock.held, "timetable:generate:"+testYear)
	if _, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear}); err != nil {
		t.Errorf("锁释放后应能再次生成: %v", err)
	}
}

func TestTimetableService_Generate_LockBackendDown(t *testing.T) {
	lock := newMockLock()
	lock.err = errors.New("dial tcp: connection refused")
	svc, store, fx := setupTestTimetableService(lock)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)

	if _, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear}); err != nil {
		t.Errorf("Redis 不可用时应降级为进程内互斥: %v", err)
	}
}

func TestTimetableService_Generate_WriteFailure(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addEntry(store, "draft-old", fx.batchB, fx.phy, fx.f3, fx.s201, fx.tue1, model.EntryStatusDraft)
	dbErr := errors.New("connection reset")
	store.replaceErr = dbErr

	_, err := svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
	if !errors.Is(err, dbErr) {
		t.Fatalf("期望透传写入错误，实际: %v", err)
	}
	if errors.Is(err, scheduler.ErrInvalidInput) {
		t.Error("系统错误不应被识别为输入错误")
	}
	if n := countEntries(store, model.EntryStatusDraft); n != 1 {
		t.Errorf("写入失败时原草稿应保持不变，实际=%d", n)
	}
}

func TestTimetableService_Generate_SameYearSerialized(t *testing.T) {
	svc, store, fx := setupTestTimetableService(newMockLock())
	addLink(store, "link-1", fx.f1, fx.ds, fx.batchA)
	addLink(store, "link-2", fx.f2, fx.dbLab, fx.batchA)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Generate(context.Background(), &dto.GenerateRequest{AcademicYear: testYear})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("第 %d 个并发生成失败: %v", i, err)
		}
	}
	if n := countEntries(store, ""); n != 3 {
		t.Errorf("同一学年串行生成后应只有一套草稿，实际条目数=%d", n)
	}
}

// ── Validate / Conflicts 测试 ──

func TestTimetableService_Validate_Clean(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)
	addEntry(store, "e2", fx.batchB, fx.ds, fx.f2, fx.s201, fx.mon1, model.EntryStatusDraft)

	resp, err := svc.Validate(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Validate 应成功: %v", err)
	}
	if !resp.IsValid || len(resp.Conflicts) != 0 {
		t.Errorf("无冲突课表应校验通过: %+v", resp)
	}
}

func TestTimetableService_Validate_DetectsClash(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusApproved)
	addEntry(store, "e2", fx.batchB, fx.phy, fx.f3, fx.r101, fx.mon1, model.EntryStatusDraft)

	resp, err := svc.Validate(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Validate 应成功: %v", err)
	}
	if resp.IsValid || len(resp.Conflicts) != 1 {
		t.Fatalf("期望 1 对冲突，实际: %+v", resp)
	}
	pair := resp.Conflicts[0]
	if pair.Entries[0].ID != "e1" || pair.Entries[1].ID != "e2" {
		t.Errorf("冲突条目顺序不符: %s, %s", pair.Entries[0].ID, pair.Entries[1].ID)
	}
	if !strings.Contains(pair.Reason, "classroom") {
		t.Errorf("冲突原因应指明教室: %s", pair.Reason)
	}
	if pair.Entries[0].RoomNumber != "R101" {
		t.Errorf("冲突条目应附带展示字段: %+v", pair.Entries[0])
	}

	conflicts, err := svc.Conflicts(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Conflicts 应成功: %v", err)
	}
	if conflicts.TotalConflicts != 1 {
		t.Errorf("期望 total_conflicts=1，实际=%d", conflicts.TotalConflicts)
	}
}

func TestTimetableService_Validate_KindViolation(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.dbLab, fx.f2, fx.r101, fx.mon1, model.EntryStatusDraft)

	resp, err := svc.Validate(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Validate 应成功: %v", err)
	}
	if len(resp.KindViolations) != 1 {
		t.Fatalf("期望 1 条类型不兼容，实际: %+v", resp.KindViolations)
	}
	v := resp.KindViolations[0]
	if v.SubjectKind != model.SubjectKindLab || v.ClassroomKind != model.RoomKindLecture {
		t.Errorf("类型不兼容描述不符: %+v", v)
	}
}

// ── Approve / Publish 测试 ──

func TestTimetableService_ApproveThenPublish(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)
	addEntry(store, "e2", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon2, model.EntryStatusDraft)
	store.entries = append(store.entries, &model.TimetableEntry{
		EntryID: "other-year", BatchID: "batch-a", SubjectID: "ds", FacultyID: "f1",
		ClassroomID: "r101", TimeSlotID: "mon-1", AcademicYear: "2025-26", Status: model.EntryStatusDraft,
	})

	approved, err := svc.Approve(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.Updated != 2 || approved.Status != model.EntryStatusApproved {
		t.Errorf("期望审核 2 条，实际: %+v", approved)
	}

	published, err := svc.Publish(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}
	if published.Updated != 2 {
		t.Errorf("期望发布 2 条，实际=%d", published.Updated)
	}

	again, _ := svc.Approve(context.Background(), testYear)
	if again.Updated != 0 {
		t.Errorf("已发布条目不应再被审核，实际=%d", again.Updated)
	}
	if n := countEntries(store, model.EntryStatusDraft); n != 1 {
		t.Errorf("其他学年的草稿不应受影响，实际=%d", n)
	}
}

func TestTimetableService_Publish_SkipsDrafts(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)

	resp, err := svc.Publish(context.Background(), testYear)
	if err != nil {
		t.Fatalf("Publish 应成功: %v", err)
	}
	if resp.Updated != 0 {
		t.Errorf("未审核的草稿不能直接发布，实际=%d", resp.Updated)
	}
}

// ── 人工编辑测试 ──

func TestTimetableService_CreateEntry_Success(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)

	resp, err := svc.CreateEntry(context.Background(), &dto.CreateEntryRequest{
		BatchID:      fx.batchB.BatchID,
		SubjectID:    fx.ds.SubjectID,
		FacultyID:    fx.f2.UserID,
		ClassroomID:  fx.s201.ClassroomID,
		TimeSlotID:   fx.mon1.TimeSlotID,
		AcademicYear: testYear,
	})
	if err != nil {
		t.Fatalf("CreateEntry 应成功: %v", err)
	}
	if resp.Status != model.EntryStatusDraft {
		t.Errorf("默认状态应为 draft，实际=%s", resp.Status)
	}
	if resp.RoomNumber != "S201" || resp.SubjectName != "Data Structures" || resp.FacultyName != "Dr. Rao" {
		t.Errorf("返回条目应附带展示字段: %+v", resp)
	}
	if resp.DayOfWeek != 1 || resp.StartTime != "09:00:00" {
		t.Errorf("时间段信息不符: %+v", resp)
	}
	if countEntries(store, "") != 1 {
		t.Error("条目应被持久化")
	}
}

// 教师 F1 已在 mon-1 为 B1 上课，再为 B2 安排同一时段应被拒绝
func TestTimetableService_CreateEntry_FacultyClash(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusApproved)

	_, err := svc.CreateEntry(context.Background(), &dto.CreateEntryRequest{
		BatchID:      fx.batchB.BatchID,
		SubjectID:    fx.ds.SubjectID,
		FacultyID:    fx.f1.UserID,
		ClassroomID:  fx.s201.ClassroomID,
		TimeSlotID:   fx.mon1.TimeSlotID,
		AcademicYear: testYear,
	})
	if !errors.Is(err, ErrEntryConflict) {
		t.Fatalf("期望 ErrEntryConflict，实际: %v", err)
	}
	var conflictErr *EntryConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 *EntryConflictError，实际: %T", err)
	}
	if len(conflictErr.Conflicts) != 1 || conflictErr.Conflicts[0].ID != "e1" {
		t.Errorf("冲突条目不符: %+v", conflictErr.Conflicts)
	}
	if countEntries(store, "") != 1 {
		t.Error("冲突写入不应落库")
	}
}

func TestTimetableService_CreateEntry_OtherYearDoesNotClash(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusApproved)

	_, err := svc.CreateEntry(context.Background(), &dto.CreateEntryRequest{
		BatchID:      fx.batchA.BatchID,
		SubjectID:    fx.ds.SubjectID,
		FacultyID:    fx.f1.UserID,
		ClassroomID:  fx.r101.ClassroomID,
		TimeSlotID:   fx.mon1.TimeSlotID,
		AcademicYear: "2025-26",
	})
	if err != nil {
		t.Errorf("不同学年的同一时段不应冲突: %v", err)
	}
}

func TestTimetableService_CreateEntry_Rejections(t *testing.T) {
	svc, _, fx := setupTestTimetableService(nil)

	base := func() *dto.CreateEntryRequest {
		return &dto.CreateEntryRequest{
			BatchID:      fx.batchA.BatchID,
			SubjectID:    fx.ds.SubjectID,
			FacultyID:    fx.f1.UserID,
			ClassroomID:  fx.r101.ClassroomID,
			TimeSlotID:   fx.mon1.TimeSlotID,
			AcademicYear: testYear,
		}
	}

	tests := []struct {
		name   string
		mutate func(r *dto.CreateEntryRequest)
		want   error
	}{
		{"实验课安排在普通教室", func(r *dto.CreateEntryRequest) { r.SubjectID = fx.dbLab.SubjectID }, ErrEntryKindMismatch},
		{"休息时段", func(r *dto.CreateEntryRequest) { r.TimeSlotID = fx.monBreak.TimeSlotID }, ErrEntryBreakSlot},
		{"教室不存在", func(r *dto.CreateEntryRequest) { r.ClassroomID = "missing" }, ErrEntryRoomNotFound},
		{"班级不存在", func(r *dto.CreateEntryRequest) { r.BatchID = "missing" }, ErrEntryBatchNotFound},
		{"教师不存在", func(r *dto.CreateEntryRequest) { r.FacultyID = "missing" }, ErrEntryFacultyNotFound},
		{"课程不存在", func(r *dto.CreateEntryRequest) { r.SubjectID = "missing" }, ErrEntrySubjectNotFound},
		{"时间段不存在", func(r *dto.CreateEntryRequest) { r.TimeSlotID = "missing" }, ErrEntrySlotNotFound},
		{"非法状态", func(r *dto.CreateEntryRequest) { r.Status = "archived" }, ErrEntryInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)
			if _, err := svc.CreateEntry(context.Background(), req); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

func TestTimetableService_UpdateEntry_ExcludesItself(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)

	notes := "换到 R101"
	resp, err := svc.UpdateEntry(context.Background(), "e1", &dto.UpdateEntryRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("修改自身不应与自身冲突: %v", err)
	}
	if resp.Notes == nil || *resp.Notes != notes {
		t.Errorf("notes 未更新: %+v", resp)
	}
}

func TestTimetableService_UpdateEntry_MoveIntoClash(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)
	addEntry(store, "e2", fx.batchB, fx.ds, fx.f2, fx.s201, fx.mon2, model.EntryStatusDraft)

	slot := fx.mon1.TimeSlotID
	room := fx.r101.ClassroomID
	_, err := svc.UpdateEntry(context.Background(), "e2", &dto.UpdateEntryRequest{TimeSlotID: &slot, ClassroomID: &room})
	if !errors.Is(err, ErrEntryConflict) {
		t.Fatalf("期望 ErrEntryConflict，实际: %v", err)
	}

	e2, _ := newMockRepository(store).TimetableEntry.GetByID(context.Background(), "e2")
	if e2.TimeSlotID != fx.mon2.TimeSlotID {
		t.Error("被拒绝的修改不应落库")
	}
}

func TestTimetableService_UpdateEntry_NotFound(t *testing.T) {
	svc, _, _ := setupTestTimetableService(nil)

	notes := "x"
	if _, err := svc.UpdateEntry(context.Background(), "missing", &dto.UpdateEntryRequest{Notes: &notes}); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("期望 ErrEntryNotFound，实际: %v", err)
	}
}

func TestTimetableService_DeleteEntry(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)

	if err := svc.DeleteEntry(context.Background(), "e1"); err != nil {
		t.Fatalf("DeleteEntry 应成功: %v", err)
	}
	if err := svc.DeleteEntry(context.Background(), "e1"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("重复删除期望 ErrEntryNotFound，实际: %v", err)
	}
}

func TestTimetableService_Check(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)

	req := &dto.CheckRequest{
		BatchID:      fx.batchB.BatchID,
		FacultyID:    fx.f2.UserID,
		ClassroomID:  fx.r101.ClassroomID,
		TimeSlotID:   fx.mon1.TimeSlotID,
		AcademicYear: testYear,
	}
	resp, err := svc.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check 应成功: %v", err)
	}
	if !resp.HasConflicts || len(resp.Conflicts) != 1 {
		t.Errorf("同一教室同一时段应冲突: %+v", resp)
	}

	req.ExcludeEntryID = "e1"
	resp, _ = svc.Check(context.Background(), req)
	if resp.HasConflicts {
		t.Error("排除自身后不应冲突")
	}
	if countEntries(store, "") != 1 {
		t.Error("Check 为只读操作")
	}
}

// ── 查询视图 ──

func TestTimetableService_Views(t *testing.T) {
	svc, store, fx := setupTestTimetableService(nil)
	addEntry(store, "e1", fx.batchA, fx.ds, fx.f1, fx.r101, fx.mon1, model.EntryStatusDraft)
	addEntry(store, "e2", fx.batchB, fx.ds, fx.f1, fx.r101, fx.mon2, model.EntryStatusApproved)
	addEntry(store, "e3", fx.batchA, fx.dbLab, fx.f2, fx.lab1, fx.tue1, model.EntryStatusDraft)

	byBatch, err := svc.List(context.Background(), &dto.TimetableListRequest{AcademicYear: testYear, BatchID: fx.batchA.BatchID})
	if err != nil || len(byBatch) != 2 {
		t.Errorf("班级视图期望 2 条，实际 %d (%v)", len(byBatch), err)
	}

	byFaculty, err := svc.ListByFaculty(context.Background(), fx.f1.UserID, &dto.TimetableViewRequest{AcademicYear: testYear})
	if err != nil || len(byFaculty) != 2 {
		t.Errorf("教师视图期望 2 条，实际 %d (%v)", len(byFaculty), err)
	}

	approved, err := svc.ListByClassroom(context.Background(), fx.r101.ClassroomID, &dto.TimetableViewRequest{Status: model.EntryStatusApproved})
	if err != nil || len(approved) != 1 || approved[0].ID != "e2" {
		t.Errorf("教室视图按状态过滤不符: %+v (%v)", approved, err)
	}
}
