package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	enginesCmd.AddCommand(enginesSetCmd)
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "查看搜索引擎配置",
	Long:  "列出全部搜索引擎配置。seq 最小的引擎是联网搜索使用的首选引擎。",
	RunE: func(cmd *cobra.Command, args []string) error {
		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()

		engines, err := instance.History.ListSearchEngines(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\t名称\t序号\t配置")
		for _, e := range engines {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", e.ID, e.Name, e.Seq, e.Config)
		}
		return w.Flush()
	},
}

var enginesSetCmd = &cobra.Command{
	Use:   "set <id> <config-json>",
	Short: "更新搜索引擎配置",
	Example: `
deskchat engines set 2 '{"baseurl":"https://google.serper.dev/search","apikey":"sk-..."}'
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("非法的引擎 ID: %s", args[0])
		}

		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()

		return instance.History.UpdateSearchEngineConfig(cmd.Context(), id, args[1])
	},
}
