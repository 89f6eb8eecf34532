package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"github.com/purpose168/deskchat-cn/internal/config"
	"github.com/purpose168/deskchat-cn/internal/home"
)

const defaultTailLines = 1000

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "跟踪日志输出")
	logsCmd.Flags().IntP("tail", "t", defaultTailLines, "只显示最后 N 行")
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "查看 deskchat 日志",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		debug, _ := cmd.Flags().GetBool("debug")
		follow, _ := cmd.Flags().GetBool("follow")
		tailLines, _ := cmd.Flags().GetInt("tail")

		cfg, err := config.Init(dataDir, debug)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logsFile := filepath.Join(cfg.DataDir, "logs", "deskchat.log")
		if _, err := os.Stat(logsFile); os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "未找到日志文件:", home.Short(logsFile))
			return nil
		}

		if follow {
			return followLogs(cmd.Context(), logsFile)
		}
		return showLogs(logsFile, tailLines)
	},
}

// followLogs 持续输出新增的日志行，直到上下文取消
func followLogs(ctx context.Context, logsFile string) error {
	t, err := tail.TailFile(logsFile, tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("跟踪日志文件失败: %w", err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				continue
			}
			fmt.Println(line.Text)
		}
	}
}

// showLogs 输出日志文件的最后 n 行
func showLogs(logsFile string, n int) error {
	raw, err := os.ReadFile(logsFile)
	if err != nil {
		return fmt.Errorf("读取日志文件失败: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
