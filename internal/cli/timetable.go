package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/scheduler"
)

func addYearFlag(cmd *cobra.Command, year *string) {
	cmd.Flags().StringVarP(year, "year", "y", "", "学年，如 2024-25")
	_ = cmd.MarkFlagRequired("year")
}

func checkYear(year string) error {
	if !scheduler.ValidAcademicYear(year) {
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("学年格式应为 YYYY-YY: %q", year)}
	}
	return nil
}

// NewGenerateCommand 生成学年课表草稿
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		year         string
		optimization string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "生成学年课表草稿（替换该学年现有草稿）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkYear(year); err != nil {
				return err
			}
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			req := &dto.GenerateRequest{AcademicYear: year}
			if optimization != "" {
				req.Options = &scheduler.Options{Optimization: optimization}
			}
			result, err := a.svc.Timetable.Generate(cmd.Context(), req)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "生成课表失败", Err: err}
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, result)
		},
	}

	addYearFlag(cmd, &year)
	cmd.Flags().StringVar(&optimization, "optimization", "", "优化策略（当前不改变排课结果）")
	return cmd
}

// NewValidateCommand 校验学年课表，存在冲突时以退出码 1 结束
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "校验学年课表冲突",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkYear(year); err != nil {
				return err
			}
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.svc.Timetable.Validate(cmd.Context(), year)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "校验课表失败", Err: err}
			}
			if err := writeResult(cmd.OutOrStdout(), rootOpts.Format, report); err != nil {
				return err
			}
			if !report.IsValid {
				return &ExitError{
					Code:    ExitFailure,
					Message: fmt.Sprintf("发现 %d 对冲突、%d 条类型不兼容", len(report.Conflicts), len(report.KindViolations)),
				}
			}
			return nil
		},
	}

	addYearFlag(cmd, &year)
	return cmd
}

// NewApproveCommand 审核学年草稿
func NewApproveCommand(rootOpts *RootOptions) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "将学年草稿标记为已审核",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkYear(year); err != nil {
				return err
			}
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.Timetable.Approve(cmd.Context(), year)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "审核失败", Err: err}
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, result)
		},
	}

	addYearFlag(cmd, &year)
	return cmd
}

// NewPublishCommand 发布学年已审核课表
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "发布学年已审核课表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkYear(year); err != nil {
				return err
			}
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.Timetable.Publish(cmd.Context(), year)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "发布失败", Err: err}
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, result)
		},
	}

	addYearFlag(cmd, &year)
	return cmd
}
