// Package engine implements the dialogue loop: given one inbound message it
// composes a prompt from the system instructions, conversation memory and the
// new message, queries the completion service, dispatches requested tool
// calls, and repeats until a final reply is produced or the iteration ceiling
// is hit.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/internal/booking"
	"github.com/washlane/booking-assistant/internal/channel"
	"github.com/washlane/booking-assistant/internal/dedup"
	"github.com/washlane/booking-assistant/internal/llm"
	"github.com/washlane/booking-assistant/internal/memory"
	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// Policy controls which inbound messages are handled at all.
type Policy struct {
	IgnoreGroups      bool
	IgnoreBroadcast   bool
	IgnoreOwnMessages bool
}

// Config holds dialogue-loop settings.
type Config struct {
	Enabled           bool
	Model             string
	SystemPrompt      string
	MaxLoops          int
	FallbackToDefault bool
	SelfID            string
	Policy            Policy
}

// Engine orchestrates one turn per inbound message. Turns for the same
// conversation key are serialized; turns for different keys run concurrently.
type Engine struct {
	cfg       Config
	guard     *dedup.Guard
	memory    *memory.Store
	llm       llm.Client
	pipeline  *booking.Pipeline
	sender    channel.Sender
	responder *Responder
	tool      llm.Tool
	logger    *logger.Logger

	turnMu sync.Mutex
	turns  map[string]*sync.Mutex
}

// New creates an engine.
func New(
	cfg Config,
	guard *dedup.Guard,
	store *memory.Store,
	client llm.Client,
	pipeline *booking.Pipeline,
	sender channel.Sender,
	responder *Responder,
	tool llm.Tool,
	log *logger.Logger,
) *Engine {
	if cfg.MaxLoops <= 0 {
		cfg.MaxLoops = 5
	}
	return &Engine{
		cfg:       cfg,
		guard:     guard,
		memory:    store,
		llm:       client,
		pipeline:  pipeline,
		sender:    sender,
		responder: responder,
		tool:      tool,
		logger:    log,
		turns:     make(map[string]*sync.Mutex),
	}
}

// HandleInbound processes one gateway event end to end. It never returns an
// error: a failed turn is logged and degraded, it must not take the process
// down with it.
func (e *Engine) HandleInbound(ctx context.Context, in model.InboundMessage) {
	if !e.guard.ShouldProcess(in.ID) {
		metrics.MessagesReceived.WithLabelValues("duplicate").Inc()
		return
	}

	if disposition, ok := e.screen(in); !ok {
		metrics.MessagesReceived.WithLabelValues(disposition).Inc()
		return
	}
	metrics.MessagesReceived.WithLabelValues("accepted").Inc()

	log := e.logger.WithConversation(uuid.New().String(), in.From)
	log.Info("handling message", zap.String("message_id", in.ID))

	customer := model.CustomerInfo{
		Name:   in.SenderName,
		Number: chatNumber(in.From),
	}
	if customer.Name == "" {
		customer.Name = "Customer"
	}

	unlock := e.lockTurn(in.From)
	defer unlock()

	if !e.cfg.Enabled {
		e.secondaryReply(ctx, log, in.From, in.Body)
		return
	}

	e.runLoop(ctx, log, in, customer)
}

// screen applies the channel policy gates: own messages, broadcasts, and
// group messages that neither mention the bot nor reply to it.
func (e *Engine) screen(in model.InboundMessage) (string, bool) {
	if in.FromSelf && e.cfg.Policy.IgnoreOwnMessages {
		return "own", false
	}
	if in.IsGroup && e.cfg.Policy.IgnoreGroups {
		return "group_ignored", false
	}
	if e.cfg.Policy.IgnoreBroadcast && strings.HasPrefix(in.From, "status@") {
		return "broadcast", false
	}
	if in.IsGroup {
		mentioned := false
		for _, m := range in.Mentions {
			if m == e.cfg.SelfID {
				mentioned = true
				break
			}
		}
		replyingToBot := in.QuotedMessageAuthor != "" && in.QuotedMessageAuthor == e.cfg.SelfID
		if !mentioned && !replyingToBot {
			return "group_ignored", false
		}
	}
	return "accepted", true
}

// runLoop drives the query/tool-dispatch state machine for one turn.
func (e *Engine) runLoop(ctx context.Context, log *logger.Logger, in model.InboundMessage, customer model.CustomerInfo) {
	snapshot := e.memory.Messages(in.From)

	msgs := make([]model.Message, 0, len(snapshot)+2)
	msgs = append(msgs, model.SystemMessage(e.cfg.SystemPrompt))
	msgs = append(msgs, snapshot...)
	msgs = append(msgs, model.UserMessage(in.Body))

	replied := false
	queryFailed := false

	for i := 0; i < e.cfg.MaxLoops && !replied; i++ {
		start := time.Now()
		completion, err := e.llm.Complete(ctx, &llm.CompletionRequest{
			Model:    e.cfg.Model,
			Messages: msgs,
			Tools:    []llm.Tool{e.tool},
		})
		if err != nil {
			metrics.RecordCompletion(e.cfg.Model, "error", time.Since(start).Seconds(), 0, 0)
			log.Error("completion service failed", zap.Error(err))
			queryFailed = true
			break
		}
		metrics.RecordCompletion(completion.Model, "success", time.Since(start).Seconds(), completion.TokensIn, completion.TokensOut)

		if len(completion.ToolCalls) > 0 {
			msgs = append(msgs, model.Message{
				Role:      model.RoleAssistant,
				Content:   completion.Content,
				ToolCalls: completion.ToolCalls,
			})
			for _, call := range completion.ToolCalls {
				metrics.ToolCalls.WithLabelValues(call.Name).Inc()
				log.Info("executing tool", zap.String("tool", call.Name))
				result := e.dispatchTool(ctx, call, customer, msgs)
				msgs = append(msgs, model.ToolResult(call, result))
			}
			continue
		}

		if completion.Content != "" {
			e.send(ctx, log, in.From, completion.Content, "loop")
			msgs = append(msgs, model.AssistantMessage(completion.Content))
		}
		replied = true
	}

	if queryFailed {
		// Abort without committing the partial exchange; the memory stays as
		// it was before the turn.
		if e.cfg.FallbackToDefault {
			e.secondaryReply(ctx, log, in.From, in.Body)
		}
		return
	}

	// Commit only what this turn produced: the new user message plus every
	// assistant and tool message after it. The system prompt is never stored.
	e.memory.Append(in.From, msgs[1+len(snapshot):]...)

	if !replied {
		log.Warn("iteration ceiling reached without a final reply",
			zap.Int("max_loops", e.cfg.MaxLoops),
		)
	}
}

// secondaryReply runs the keyword responder and then the default reply, each
// at most once.
func (e *Engine) secondaryReply(ctx context.Context, log *logger.Logger, to, body string) {
	reply, origin, ok := e.responder.Reply(body)
	if !ok {
		return
	}
	e.send(ctx, log, to, reply, origin)
}

func (e *Engine) send(ctx context.Context, log *logger.Logger, to, text, origin string) {
	if err := e.sender.Send(ctx, to, text); err != nil {
		// Delivery already retried through the fallback path; drop the reply.
		log.Error("failed to send reply", zap.Error(err))
		return
	}
	metrics.RepliesSent.WithLabelValues(origin).Inc()
}

// lockTurn serializes turns per conversation key so two in-flight messages
// for the same key cannot interleave their memory read-then-append.
func (e *Engine) lockTurn(key string) func() {
	e.turnMu.Lock()
	mu, ok := e.turns[key]
	if !ok {
		mu = &sync.Mutex{}
		e.turns[key] = mu
	}
	e.turnMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// chatNumber strips the gateway suffix from a conversation key.
func chatNumber(from string) string {
	number, _, _ := strings.Cut(from, "@")
	return number
}
