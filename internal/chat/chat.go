// Package chat 实现生成会话的调度：流式输出、工具调用拦截、
// 搜索增强、取消与历史持久化。
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/purpose168/deskchat-cn/internal/csync"
	"github.com/purpose168/deskchat-cn/internal/history"
	"github.com/purpose168/deskchat-cn/internal/message"
	"github.com/purpose168/deskchat-cn/internal/provider"
	"github.com/purpose168/deskchat-cn/internal/search"
	"github.com/purpose168/deskchat-cn/internal/tokens"
)

// ErrSessionBusy 表示已有生成任务在进行中
var ErrSessionBusy = errors.New("已有生成任务在进行中")

// ErrEmptyMessages 表示请求没有携带任何消息
var ErrEmptyMessages = errors.New("消息列表为空")

// State 是会话调度器的运行状态
type State string

const (
	StateIdle        State = "idle"         // 空闲
	StateStreaming   State = "streaming"    // 正在接收增量
	StateToolPending State = "tool_pending" // 等待工具调用结果
	StateFinalizing  State = "finalizing"   // 正在持久化
	StateCancelling  State = "cancelling"   // 取消中
)

// 每次请求默认保留的最近对话组数量
const defaultHistoryLength = 5

// Options 是一次生成的会话标识
type Options struct {
	ChatID  string // 会话 ID
	GroupID string // 对话组 ID
	Title   string // 会话标题
}

// Result 是一次非流式生成的结果
type Result struct {
	ChatID  string         `json:"chat_id"`
	GroupID string         `json:"group_id"`
	Content string         `json:"content"`
	Usage   provider.Usage `json:"usage"`
}

// Service 管理一个渠道上的生成会话。
// 渠道配置在构造时固定，同一时刻至多一个活跃会话。
type Service struct {
	channel   string
	model     string
	adapter   provider.Adapter
	history   history.Service
	search    *search.Dispatcher
	estimator *tokens.Estimator
	state     *csync.Value[State]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New 创建会话服务，channel 决定使用哪个服务商适配器
func New(channel string, cfg provider.Config, hist history.Service, dispatcher *search.Dispatcher) (*Service, error) {
	adapter, err := provider.New(channel, cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		channel:   channel,
		model:     cfg.Model,
		adapter:   adapter,
		history:   hist,
		search:    dispatcher,
		estimator: tokens.ForModel(cfg.Model),
		state:     csync.NewValue(StateIdle),
	}, nil
}

// State 返回调度器当前状态
func (s *Service) State() State {
	return s.state.Get()
}

// StopGeneration 取消当前生成。已生成的部分文本仍会被持久化。
// 没有活跃会话时是空操作。
func (s *Service) StopGeneration() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		s.state.Set(StateCancelling)
		cancel()
	}
}

// acquire 占用会话槽位，已有活跃会话时返回 ErrSessionBusy
func (s *Service) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, nil, ErrSessionBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return ctx, cancel, nil
}

func (s *Service) release(cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()
	s.state.Set(StateIdle)
}

// StreamChatCompletion 发起一次流式生成。
// 增量通过 onData(chunk, false) 依次回调，结束信号 onData("", true)
// 在所有路径上恰好触发一次，且持久化先于结束信号完成。
// 服务商硬错误先以 "Error: ..." 增量上报，再作为返回值抛出，不持久化。
func (s *Service) StreamChatCompletion(ctx context.Context, msgs []message.Message, opts Options, onData func(chunk string, done bool)) error {
	if len(msgs) == 0 {
		return ErrEmptyMessages
	}

	ctx, cancel, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer s.release(cancel)

	doneSent := false
	finish := func() {
		if !doneSent {
			doneSent = true
			onData("", true)
		}
	}

	msgs = s.trimHistory(ctx, msgs)
	s.state.Set(StateStreaming)

	var sb strings.Builder
	var usage provider.Usage
	acc := newToolCallAccumulator()

	// 思考增量在文本序列化边界包上 <think> 标记
	startThink := false
	emitContent := func(chunk string) {
		if startThink {
			startThink = false
			sb.WriteString("</think>")
			onData("</think>", false)
		}
		sb.WriteString(chunk)
		onData(chunk, false)
	}
	emitThinking := func(chunk string) {
		if !startThink {
			startThink = true
			sb.WriteString("<think>")
			onData("<think>"+chunk, false)
			sb.WriteString(chunk)
			return
		}
		sb.WriteString(chunk)
		onData(chunk, false)
	}

	runStream := func(req provider.Request) error {
		for ev := range s.adapter.Stream(ctx, req) {
			switch ev.Type {
			case provider.EventContentDelta:
				emitContent(ev.Content)
			case provider.EventThinkingDelta:
				emitThinking(ev.Thinking)
			case provider.EventToolCallDelta:
				acc.Add(*ev.ToolCall)
			case provider.EventUsage:
				usage.Merge(*ev.Usage)
			case provider.EventComplete:
				return nil
			case provider.EventError:
				return ev.Error
			}
		}
		// 通道未经 Complete 就关闭，只会发生在取消时
		return ctx.Err()
	}

	fail := func(err error) error {
		onData(fmt.Sprintf("Error: %s", err), false)
		finish()
		return err
	}

	err = runStream(s.buildRequest(msgs))
	cancelled := ctx.Err() != nil
	if err != nil && !cancelled {
		return fail(err)
	}

	// 搜索增强回合：每次生成至多一轮，取消后不再发起
	if !cancelled {
		if calls := acc.Completed(); len(calls) > 0 {
			s.state.Set(StateToolPending)
			if results := s.search.HandleWebSearch(ctx, calls); results != "" {
				followUp := append(slices.Clone(msgs), searchSpliceMessage(results))
				// 持久化的回答只保留增强请求的回应，
				// 工具调用前的零星增量不计入
				if startThink {
					startThink = false
					onData("</think>", false)
				}
				sb.Reset()
				s.state.Set(StateStreaming)
				err = runStream(provider.Request{Messages: followUp})
				cancelled = ctx.Err() != nil
				if err != nil && !cancelled {
					return fail(err)
				}
			}
		}
	}

	if startThink {
		sb.WriteString("</think>")
		onData("</think>", false)
	}

	s.state.Set(StateFinalizing)
	if err := s.persist(context.WithoutCancel(ctx), msgs, opts, sb.String(), usage); err != nil {
		return fail(err)
	}
	finish()
	return nil
}

// ChatCompletion 发起一次非流式生成
func (s *Service) ChatCompletion(ctx context.Context, msgs []message.Message, opts Options) (*Result, error) {
	if len(msgs) == 0 {
		return nil, ErrEmptyMessages
	}

	ctx, cancel, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(cancel)

	msgs = s.trimHistory(ctx, msgs)
	s.state.Set(StateStreaming)

	resp, err := s.adapter.Complete(ctx, s.buildRequest(msgs))
	if err != nil {
		return nil, err
	}
	content := resp.Content
	usage := resp.Usage

	if len(resp.ToolCalls) > 0 {
		s.state.Set(StateToolPending)
		if results := s.search.HandleWebSearch(ctx, resp.ToolCalls); results != "" {
			followUp := append(slices.Clone(msgs), searchSpliceMessage(results))
			s.state.Set(StateStreaming)
			followResp, err := s.adapter.Complete(ctx, provider.Request{Messages: followUp})
			if err != nil {
				return nil, err
			}
			content = followResp.Content
			usage.Merge(followResp.Usage)
		}
	}

	s.state.Set(StateFinalizing)
	if err := s.persist(context.WithoutCancel(ctx), msgs, opts, content, usage); err != nil {
		return nil, err
	}
	return &Result{
		ChatID:  opts.ChatID,
		GroupID: opts.GroupID,
		Content: content,
		Usage:   usage,
	}, nil
}

// buildRequest 构建生成请求。任一消息要求联网时挂上搜索工具，
// 并强制模型调用它。
func (s *Service) buildRequest(msgs []message.Message) provider.Request {
	req := provider.Request{Messages: msgs}
	for _, m := range msgs {
		if m.Online {
			req.Tools = []provider.ToolDefinition{search.WebSearchTool}
			req.ForceTool = search.WebSearchToolName
			break
		}
	}
	return req
}

// trimHistory 按设置裁剪历史，只保留最近 N 组完整对话
func (s *Service) trimHistory(ctx context.Context, msgs []message.Message) []message.Message {
	length := int64(defaultHistoryLength)
	if settings, err := s.history.GeneralSettings(ctx); err == nil && settings.HistoryLength > 0 {
		length = settings.HistoryLength
	} else if err != nil {
		slog.Warn("读取用户设置失败，使用默认历史长度", "error", err)
	}
	return message.TrimToGroups(msgs, int(length))
}

// persist 持久化对话轮次与用量记录。
// 对话记录与用量记录并发写入，任一失败即返回错误。
func (s *Service) persist(ctx context.Context, msgs []message.Message, opts Options, content string, usage provider.Usage) error {
	userContent := msgs[len(msgs)-1].Content
	var images []string
	var files []message.FileRef
	for _, m := range msgs {
		images = append(images, m.Images...)
		files = append(files, m.Files...)
	}

	// 服务商未报告的用量字段以本地估算补齐
	if usage.InputTokens == 0 {
		usage.InputTokens = s.estimator.CountMessages(msgs)
	}
	if usage.OutputTokens == 0 {
		usage.OutputTokens = s.estimator.Count(content)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.history.SaveTurn(ctx, history.SaveTurnParams{
			ChatID:           opts.ChatID,
			GroupID:          opts.GroupID,
			Title:            opts.Title,
			Channel:          s.channel,
			Model:            s.model,
			UserContent:      userContent,
			AssistantContent: content,
			Images:           images,
			Files:            files,
		})
		return err
	})
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		g.Go(func() error {
			return s.history.SaveUsage(ctx, opts.GroupID, s.model, usage.InputTokens, usage.OutputTokens)
		})
	}
	return g.Wait()
}

// searchSpliceMessage 把搜索结果包装成附加的用户消息，
// 指示模型引用结果并标注来源。
func searchSpliceMessage(results string) message.Message {
	prompt := fmt.Sprintf(`# Instructions
1. Use the user's language for the response
2. Current time: %s
3. Answer based on the search results below
4. Format requirements:
   - Use markdown syntax for all Url links
   - Quote relevant information using markdown blockquotes (>)
   - Organize information with proper markdown headings
   - Always cite sources at the end using numbered references
   - In your response, please include a source link at any position
5. Ensure your response is accurate and objective

Search Results:
%s`, time.Now().Format("2006-01-02 15:04:05"), results)
	return message.NewUserMessage(prompt)
}
