// Package cmd 实现 deskchat 的命令行入口。
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/purpose168/deskchat-cn/internal/app"
	"github.com/purpose168/deskchat-cn/internal/config"
	"github.com/purpose168/deskchat-cn/internal/db"
	"github.com/purpose168/deskchat-cn/internal/log"
	"github.com/purpose168/deskchat-cn/internal/version"
)

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "自定义 deskchat 数据目录")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "调试")
	rootCmd.PersistentFlags().StringP("channel", "C", "", "使用的模型渠道（openai、anthropic）")

	rootCmd.AddCommand(
		chatCmd,
		historyCmd,
		statsCmd,
		enginesCmd,
		settingsCmd,
		logsCmd,
	)
}

var rootCmd = &cobra.Command{
	Use:   "deskchat",
	Short: "桌面大模型聊天客户端的命令行版本",
	Long:  "流式对话、联网搜索增强与历史记录管理，支持 OpenAI 与 Anthropic 渠道",
	Example: `
# 发起一次流式对话
deskchat chat "解释一下 Go 的 context"

# 联网搜索增强
deskchat chat --online "今天有什么科技新闻"

# 查看某个会话的历史
deskchat history <chat-id>

# 查看各模型的令牌用量
deskchat stats
  `,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute 运行命令行入口
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// setupApp 完成配置加载、日志初始化和数据库连接，
// 是各子命令的通用前置步骤。
func setupApp(cmd *cobra.Command) (*app.App, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	channel, _ := cmd.Flags().GetString("channel")
	ctx := cmd.Context()

	cfg, err := config.Init(dataDir, debug)
	if err != nil {
		return nil, err
	}

	log.Setup(filepath.Join(cfg.DataDir, "logs", "deskchat.log"), cfg.Debug)

	conn, err := db.Connect(ctx, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	instance, err := app.New(ctx, conn, cfg, channel)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return instance, nil
}
