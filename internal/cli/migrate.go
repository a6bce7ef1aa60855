package cli

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand 执行数据库迁移
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.migrate()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "数据库迁移失败", Err: err}
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, res)
		},
	}
}
