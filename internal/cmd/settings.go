package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	settingsSetCmd.Flags().Bool("stream", true, "是否默认流式输出")
	settingsSetCmd.Flags().Int64("history-length", 0, "每次请求保留的最近对话组数量")
	settingsCmd.AddCommand(settingsSetCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "查看用户通用设置",
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()

		settings, err := instance.History.GeneralSettings(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "设置\t值")
		fmt.Fprintf(w, "流式输出\t%t\n", settings.IsStream)
		fmt.Fprintf(w, "历史保留组数\t%d\n", settings.HistoryLength)
		return w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "更新用户通用设置",
	Example: `
deskchat settings set --stream=false
deskchat settings set --history-length 10
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("stream") && !cmd.Flags().Changed("history-length") {
			return fmt.Errorf("至少指定一项设置")
		}

		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()
		ctx := cmd.Context()

		// 只覆盖显式指定的字段
		settings, err := instance.History.GeneralSettings(ctx)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("stream") {
			settings.IsStream, _ = cmd.Flags().GetBool("stream")
		}
		if cmd.Flags().Changed("history-length") {
			length, _ := cmd.Flags().GetInt64("history-length")
			if length <= 0 {
				return fmt.Errorf("历史保留组数必须大于 0")
			}
			settings.HistoryLength = length
		}
		return instance.History.UpdateGeneralSettings(ctx, settings)
	},
}
