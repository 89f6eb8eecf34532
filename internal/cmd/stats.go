package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd.Flags().Bool("json", false, "以 JSON 输出")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "显示各模型的令牌用量统计",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()

		summaries, err := instance.History.UsageByModel(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "模型\t次数\t输入令牌\t输出令牌")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Model, s.Records, s.InputTokens, s.OutputTokens)
		}
		return w.Flush()
	},
}
