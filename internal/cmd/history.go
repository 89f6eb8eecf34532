package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	historyCmd.Flags().Bool("json", false, "以 JSON 输出")
	historyCmd.Flags().String("delete-group", "", "删除指定对话组后退出")
	historyCmd.Flags().Bool("delete", false, "删除整个会话后退出")
}

var historyCmd = &cobra.Command{
	Use:   "history <chat-id>",
	Short: "查看或删除会话历史",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID := args[0]
		asJSON, _ := cmd.Flags().GetBool("json")
		deleteGroup, _ := cmd.Flags().GetString("delete-group")
		deleteChat, _ := cmd.Flags().GetBool("delete")

		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()
		ctx := cmd.Context()

		if deleteGroup != "" {
			return instance.History.DeleteGroup(ctx, deleteGroup)
		}
		if deleteChat {
			return instance.History.DeleteChat(ctx, chatID)
		}

		turns, err := instance.History.ListTurns(ctx, chatID)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(turns)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "时间\t组\t模型\t用户\t助手")
		for _, turn := range turns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				turn.CreatedAt.Format("2006-01-02 15:04"),
				turn.GroupID,
				turn.Model,
				oneLine(turn.UserContent, 30),
				oneLine(turn.AssistantContent, 50),
			)
		}
		return w.Flush()
	},
}

// oneLine 压缩为单行并截断，便于表格展示
func oneLine(s string, max int) string {
	out := make([]rune, 0, max)
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
		if len(out) >= max {
			return string(out) + "…"
		}
	}
	return string(out)
}
