package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEntries    = errors.New("该学年暂无课表条目")
	ErrExportInvalidTerm  = errors.New("学期开始日期格式错误")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	defaultTermWeeks = 16
	icsProductID     = "-//classgrid//timetable//CN"
)

var dayNames = map[int]string{1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", 6: "周六"}

// ExportService 导出业务接口
//
//   - Excel：每个班级一个 Sheet，行为时间段（含休息），列为周一 ~ 周六
//   - iCalendar：每个课表条目一个按周重复的 VEVENT
//
// 均以 bytes.Buffer 返回，由 Handler 层设置响应头
type ExportService interface {
	ExportExcel(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
	ExportICS(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel: 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet：班级名称（按班级名排序）
//   - 行头：时间段（按开始时间去重，休息时段标注“休息”）
//   - 列头：周一 ~ 周六
//   - 单元格：课程代码 课程名 / 教师 / 教室

func (s *exportService) ExportExcel(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	entries, err := s.loadEntries(ctx, req)
	if err != nil {
		return nil, "", err
	}

	slots, err := s.repo.TimeSlot.List(ctx, nil)
	if err != nil {
		s.logger.Error("查询时间段失败", zap.Error(err))
		return nil, "", err
	}
	rows := slotRows(lo.Filter(slots, func(ts model.TimeSlot, _ int) bool { return ts.IsActive }))

	byBatch := lo.GroupBy(entries, func(e model.TimetableEntry) string { return e.BatchID })
	batchIDs := lo.Keys(byBatch)
	sort.Slice(batchIDs, func(i, j int) bool {
		return batchLabel(byBatch[batchIDs[i]][0]) < batchLabel(byBatch[batchIDs[j]][0])
	})

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	breakStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Color: "#808080"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#EDEDED"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	used := make(map[string]bool)
	for i, batchID := range batchIDs {
		group := byBatch[batchID]
		sheet := sheetName(batchLabel(group[0]), used)

		if i == 0 {
			// 复用默认 Sheet1
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, "", s.excelFail(err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", s.excelFail(err)
		}

		if err := writeBatchSheet(f, sheet, req.AcademicYear, group, rows, headerStyle, cellStyle, breakStyle); err != nil {
			return nil, "", s.excelFail(err)
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.excelFail(err)
	}

	s.logger.Info("课表 Excel 已导出",
		zap.String("academic_year", req.AcademicYear),
		zap.Int("sheets", len(batchIDs)),
		zap.Int("entries", len(entries)),
	)
	return buf, fmt.Sprintf("课表_%s.xlsx", req.AcademicYear), nil
}

// slotRow Excel 的一行：同一开始/结束时间的时间段合并为一行，
// 休息与否按星期分别记录
type slotRow struct {
	start     string
	end       string
	breakDays map[int]bool
	classDays map[int]bool
}

func (r slotRow) key() string { return clockLabel(r.start) + "-" + clockLabel(r.end) }

// allBreak 该行没有任何上课时段，整行合并显示"休息"
func (r slotRow) allBreak() bool { return len(r.classDays) == 0 && len(r.breakDays) > 0 }

func (r slotRow) breakOn(day int) bool { return r.breakDays[day] && !r.classDays[day] }

func slotRows(slots []model.TimeSlot) []slotRow {
	byKey := make(map[string]*slotRow)
	var rows []*slotRow
	for _, ts := range slots {
		r := &slotRow{start: ts.StartTime, end: ts.EndTime}
		if existing, ok := byKey[r.key()]; ok {
			r = existing
		} else {
			r.breakDays = make(map[int]bool)
			r.classDays = make(map[int]bool)
			byKey[r.key()] = r
			rows = append(rows, r)
		}
		if ts.IsBreak {
			r.breakDays[ts.DayOfWeek] = true
		} else {
			r.classDays[ts.DayOfWeek] = true
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return clockLabel(rows[i].start) < clockLabel(rows[j].start)
	})
	return lo.Map(rows, func(r *slotRow, _ int) slotRow { return *r })
}

func writeBatchSheet(f *excelize.File, sheet, year string, entries []model.TimetableEntry, rows []slotRow, headerStyle, cellStyle, breakStyle int) error {
	// "day:HH:MM-HH:MM" → 单元格文本
	cells := make(map[string][]string)
	for _, e := range entries {
		if e.TimeSlot == nil {
			continue
		}
		k := fmt.Sprintf("%d:%s-%s", e.TimeSlot.DayOfWeek, clockLabel(e.TimeSlot.StartTime), clockLabel(e.TimeSlot.EndTime))
		cells[k] = append(cells[k], entryCellText(&e))
	}

	lastCol := colName(len(dayNames))
	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 24); err != nil {
		return err
	}

	// 标题
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s 课表", sheet, year)); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", cell(lastCol, 1)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", headerStyle); err != nil {
		return err
	}

	// 表头
	if err := f.SetCellValue(sheet, "A2", "时间"); err != nil {
		return err
	}
	for day := 1; day <= len(dayNames); day++ {
		if err := f.SetCellValue(sheet, cell(colName(day), 2), dayNames[day]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle); err != nil {
		return err
	}

	for i, r := range rows {
		row := 3 + i
		if err := f.SetCellValue(sheet, cell("A", row), r.key()); err != nil {
			return err
		}
		if r.allBreak() {
			if err := f.SetCellValue(sheet, cell("B", row), "休息"); err != nil {
				return err
			}
			if err := f.MergeCell(sheet, cell("B", row), cell(lastCol, row)); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell("B", row), cell(lastCol, row), breakStyle); err != nil {
				return err
			}
			continue
		}
		if err := f.SetCellStyle(sheet, cell("B", row), cell(lastCol, row), cellStyle); err != nil {
			return err
		}
		for day := 1; day <= len(dayNames); day++ {
			c := cell(colName(day), row)
			if r.breakOn(day) {
				if err := f.SetCellValue(sheet, c, "休息"); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, c, c, breakStyle); err != nil {
					return err
				}
				continue
			}
			text := strings.Join(cells[fmt.Sprintf("%d:%s", day, r.key())], "\n")
			if err := f.SetCellValue(sheet, c, text); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *exportService) excelFail(err error) error {
	s.logger.Error("生成 Excel 失败", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrExportGenerateFail, err)
}

// ═══════════════════════════════════════════════════════════
// ExportICS: 导出课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个条目生成一个 VEVENT：首次上课为学期第一周对应星期，
// RRULE 按周重复 weeks 次。未指定学期开始日期时，取学年起始年
// 7 月 1 日之后的第一个周一。

func (s *exportService) ExportICS(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	termStart, err := resolveTermStart(req.AcademicYear, req.TermStart)
	if err != nil {
		return nil, "", err
	}
	weeks := req.Weeks
	if weeks <= 0 {
		weeks = defaultTermWeeks
	}

	entries, err := s.loadEntries(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := time.Now().UTC()
	skipped := 0
	for i := range entries {
		e := &entries[i]
		start, end, ok := occurrence(termStart, e.TimeSlot)
		if !ok {
			skipped++
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@classgrid", e.EntryID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(eventSummary(e))
		if e.Classroom != nil {
			event.SetLocation(e.Classroom.RoomNumber)
		}
		event.SetDescription(eventDescription(e))
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;COUNT="+strconv.Itoa(weeks))
	}
	if skipped > 0 {
		s.logger.Warn("部分课表条目缺少时间段信息，已跳过", zap.Int("skipped", skipped))
	}

	buf := bytes.NewBufferString(cal.Serialize())

	s.logger.Info("课表 iCalendar 已导出",
		zap.String("academic_year", req.AcademicYear),
		zap.Int("events", len(entries)-skipped),
		zap.Int("weeks", weeks),
	)
	return buf, fmt.Sprintf("timetable_%s.ics", req.AcademicYear), nil
}

// resolveTermStart 解析学期开始日期，统一对齐到当周周一
func resolveTermStart(academicYear, termStart string) (time.Time, error) {
	if termStart != "" {
		t, err := time.ParseInLocation("2006-01-02", termStart, time.Local)
		if err != nil {
			return time.Time{}, ErrExportInvalidTerm
		}
		return mondayOf(t), nil
	}

	startYear, err := strconv.Atoi(academicYear[:4])
	if err != nil {
		return time.Time{}, ErrExportInvalidTerm
	}
	t := time.Date(startYear, time.July, 1, 0, 0, 0, 0, time.Local)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// occurrence 计算条目在学期第一周的上课起止时间
func occurrence(termStart time.Time, ts *model.TimeSlot) (time.Time, time.Time, bool) {
	if ts == nil {
		return time.Time{}, time.Time{}, false
	}
	st, err := parseClock(ts.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	et, err := parseClock(ts.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day := termStart.AddDate(0, 0, ts.DayOfWeek-1)
	start := time.Date(day.Year(), day.Month(), day.Day(), st.Hour(), st.Minute(), 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), et.Hour(), et.Minute(), 0, 0, day.Location())
	return start, end, true
}

func eventSummary(e *model.TimetableEntry) string {
	if e.Subject == nil {
		return e.SubjectID
	}
	return fmt.Sprintf("%s %s", e.Subject.Code, e.Subject.Name)
}

func eventDescription(e *model.TimetableEntry) string {
	var parts []string
	if e.Batch != nil {
		parts = append(parts, "班级: "+e.Batch.Name)
	}
	if e.Faculty != nil {
		parts = append(parts, "教师: "+e.Faculty.Name)
	}
	parts = append(parts, "状态: "+e.Status)
	return strings.Join(parts, "\n")
}

// ── 辅助函数 ──

func (s *exportService) loadEntries(ctx context.Context, req *dto.ExportRequest) ([]model.TimetableEntry, error) {
	entries, err := s.repo.TimetableEntry.List(ctx, repository.EntryFilter{
		AcademicYear: req.AcademicYear,
		BatchID:      req.BatchID,
		Status:       req.Status,
	})
	if err != nil {
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrExportNoEntries
	}
	return entries, nil
}

func entryCellText(e *model.TimetableEntry) string {
	lines := []string{eventSummary(e)}
	if e.Faculty != nil {
		lines = append(lines, e.Faculty.Name)
	}
	if e.Classroom != nil {
		lines = append(lines, e.Classroom.RoomNumber)
	}
	return strings.Join(lines, " / ")
}

func batchLabel(e model.TimetableEntry) string {
	if e.Batch != nil {
		return e.Batch.Name
	}
	return e.BatchID
}

// sheetName Excel 工作表名：最长 31 字符，不含 []:*?/\，重名时追加序号
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "Sheet"
	}
	base := lo.Substring(clean, 0, 28)

	candidate := lo.Substring(clean, 0, 31)
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s(%d)", base, n)
	}
	used[candidate] = true
	return candidate
}

// clockLabel 将 "09:00:00" / "09:00" 统一为 "09:00"
func clockLabel(v string) string {
	if t, err := parseClock(v); err == nil {
		return t.Format("15:04")
	}
	return v
}

// colName 第 idx 个星期列（1=周一）对应的列名，A 列为时间
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
