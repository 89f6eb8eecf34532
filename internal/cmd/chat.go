package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/purpose168/deskchat-cn/internal/chat"
	"github.com/purpose168/deskchat-cn/internal/filepathext"
	"github.com/purpose168/deskchat-cn/internal/message"
	"github.com/purpose168/deskchat-cn/internal/stringext"
)

func init() {
	chatCmd.Flags().BoolP("online", "o", false, "启用联网搜索增强")
	chatCmd.Flags().Bool("no-stream", false, "关闭流式输出，等待完整回答（覆盖用户设置）")
	chatCmd.Flags().String("chat-id", "", "追加到已有会话，默认新建会话")
	chatCmd.Flags().String("title", "", "会话标题，默认取问题开头")
	chatCmd.Flags().StringArrayP("file", "f", nil, "附加文本文件，可重复")
	chatCmd.Flags().StringArray("image", nil, "附加图片文件，可重复")
}

var chatCmd = &cobra.Command{
	Use:   "chat [提示词]",
	Short: "发起一次对话",
	Long:  "把提示词发送给配置的模型渠道。默认流式输出，支持通过管道传入上下文。",
	Example: `
deskchat chat "解释一下 Go 的 context"
deskchat chat --online "今天有什么科技新闻"
cat main.go | deskchat chat "审查这段代码"
  `,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prompt string
		if len(args) > 0 {
			prompt = args[0]
		}
		prompt, err := maybePrependStdin(prompt)
		if err != nil {
			return err
		}
		if prompt == "" {
			return fmt.Errorf("缺少提示词")
		}

		online, _ := cmd.Flags().GetBool("online")
		noStream, _ := cmd.Flags().GetBool("no-stream")
		chatID, _ := cmd.Flags().GetString("chat-id")
		title, _ := cmd.Flags().GetString("title")
		filePaths, _ := cmd.Flags().GetStringArray("file")
		imagePaths, _ := cmd.Flags().GetStringArray("image")

		files, err := loadFiles(filePaths)
		if err != nil {
			return err
		}
		images, err := loadImages(imagePaths)
		if err != nil {
			return err
		}

		instance, err := setupApp(cmd)
		if err != nil {
			return err
		}
		defer instance.Shutdown()

		ctx := cmd.Context()

		// 流式与否默认跟随用户设置，显式传入 --no-stream 时以命令行为准
		settings, err := instance.History.GeneralSettings(ctx)
		if err != nil {
			return fmt.Errorf("读取用户设置失败: %w", err)
		}
		stream := resolveStreamMode(settings.IsStream, cmd.Flags().Changed("no-stream"), noStream)

		msgs := []message.Message{{
			Sender:  message.User,
			Content: prompt,
			Files:   files,
			Images:  images,
			Online:  online,
		}}
		if chatID != "" {
			// 续写已有会话时带上历史
			turns, err := instance.History.ListTurns(ctx, chatID)
			if err != nil {
				return err
			}
			prior := make([]message.Message, 0, len(turns)*2)
			for _, turn := range turns {
				prior = append(prior,
					message.NewUserMessage(turn.UserContent),
					message.NewAssistantMessage(turn.AssistantContent),
				)
			}
			msgs = append(prior, msgs...)
		} else {
			chatID = uuid.New().String()
		}
		if title == "" {
			title = truncateTitle(prompt)
		}

		opts := chat.Options{
			ChatID:  chatID,
			GroupID: uuid.New().String(),
			Title:   title,
		}

		if !stream {
			result, err := instance.Chat.ChatCompletion(ctx, msgs, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, result.Content)
			return nil
		}

		err = instance.Chat.StreamChatCompletion(ctx, msgs, opts, func(chunk string, done bool) {
			if done {
				fmt.Fprintln(os.Stdout)
				return
			}
			fmt.Fprint(os.Stdout, chunk)
		})
		return err
	},
}

// resolveStreamMode 决定本次生成是否走流式输出
func resolveStreamMode(defaultStream, flagSet, noStream bool) bool {
	if flagSet {
		return !noStream
	}
	return defaultStream
}

// loadFiles 读取文本附件，路径相对于当前工作目录解析
func loadFiles(paths []string) ([]message.FileRef, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	files := make([]message.FileRef, 0, len(paths))
	for _, p := range paths {
		full := filepathext.SmartJoin(cwd, p)
		bts, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("读取附件失败: %w", err)
		}
		files = append(files, message.FileRef{
			Name:    filepath.Base(full),
			Content: stringext.NormalizeSpace(string(bts)),
		})
	}
	return files, nil
}

// loadImages 读取图片附件并编码为 data URI
func loadImages(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		full := filepathext.SmartJoin(cwd, p)
		bts, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("读取图片失败: %w", err)
		}
		mediaType := mime.TypeByExtension(filepath.Ext(full))
		if mediaType == "" {
			mediaType = "image/png"
		}
		images = append(images, fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(bts)))
	}
	return images, nil
}

// truncateTitle 用提示词开头生成会话标题
func truncateTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > 20 {
		return string(runes[:20])
	}
	return prompt
}

// maybePrependStdin 把管道或重定向进来的内容拼到提示词前面
func maybePrependStdin(prompt string) (string, error) {
	if term.IsTerminal(os.Stdin.Fd()) {
		return prompt, nil
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return prompt, err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 && !fi.Mode().IsRegular() {
		return prompt, nil
	}
	bts, err := io.ReadAll(os.Stdin)
	if err != nil {
		return prompt, err
	}
	if len(bts) == 0 {
		return prompt, nil
	}
	return string(bts) + "\n\n" + prompt, nil
}
