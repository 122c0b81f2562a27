// Package dispatch turns a free-text prompt into a final answer string: one
// remote completion, an offline FAQ fallback, and the chat log.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mycobot/internal/config"
	"mycobot/internal/llm"
)

const (
	SystemInstruction = "You are MycoBot, an expert in mushroom farming. Answer clearly, practically, and concisely."
	Temperature       = 0.7
	MaxTokens         = 500
	DefaultTimeout    = 30 * time.Second

	OfflinePrefix = "(offline) "
	FailureAnswer = "remote call failed and no offline match found"
)

type Outcome string

const (
	OutcomeRemote  Outcome = "remote"
	OutcomeOffline Outcome = "offline"
	OutcomeFailed  Outcome = "failed"
)

// Reason says why the remote call did not produce the answer.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonTransport Reason = "transport"
	ReasonTimeout   Reason = "timeout"
	ReasonStatus    Reason = "status"
	ReasonMalformed Reason = "malformed"
)

// Result is the outcome of one dispatch. Answer is never empty.
type Result struct {
	ID      string
	Answer  string
	Outcome Outcome
	Reason  Reason
	Err     error
	Model   string
}

// KnowledgeBase is the offline fallback.
type KnowledgeBase interface {
	Lookup(prompt string) (string, bool)
}

// ChatRecorder persists answered prompts.
type ChatRecorder interface {
	Append(question, answer string) error
}

type Dispatcher struct {
	client  llm.Client
	faq     KnowledgeBase
	log     ChatRecorder
	policy  config.LogPolicy
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Dispatcher)

func WithPolicy(p config.LogPolicy) Option { return func(d *Dispatcher) { d.policy = p } }

func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New wires a dispatcher. faq and chatLog may be nil.
func New(client llm.Client, faq KnowledgeBase, chatLog ChatRecorder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:  client,
		faq:     faq,
		log:     chatLog,
		policy:  config.LogSuccess,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Ask returns the answer for prompt. It never returns an empty string.
func (d *Dispatcher) Ask(ctx context.Context, prompt string) string {
	return d.Dispatch(ctx, prompt).Answer
}

func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) Result {
	id := uuid.New().String()
	res := d.callRemote(ctx, prompt)
	res.ID = id
	if res.Outcome != OutcomeRemote {
		d.logger.Warn("remote call failed",
			zap.String("dispatch_id", id),
			zap.String("reason", string(res.Reason)),
			zap.Error(res.Err))
		res = d.fallback(prompt, res)
	}
	d.logger.Info("dispatch finished",
		zap.String("dispatch_id", id),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("prompt_len", len(prompt)))

	if res.Outcome == OutcomeRemote || d.policy == config.LogAll {
		d.record(prompt, res.Answer)
	}
	return res
}

func BuildRequest(prompt string) llm.Request {
	return llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemInstruction},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}

func (d *Dispatcher) callRemote(ctx context.Context, prompt string) Result {
	if d.client == nil {
		return Result{Outcome: OutcomeFailed, Reason: ReasonTransport, Err: errors.New("no llm client configured")}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.Generate(ctx, BuildRequest(prompt))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: Classify(err), Err: err}
	}
	if resp.Content == "" {
		return Result{Outcome: OutcomeFailed, Reason: ReasonMalformed, Err: llm.ErrEmptyResponse}
	}
	d.logger.Debug("remote answer",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens))
	return Result{Answer: resp.Content, Outcome: OutcomeRemote, Model: resp.Model}
}

func (d *Dispatcher) fallback(prompt string, failed Result) Result {
	if d.faq != nil {
		if ans, ok := d.faq.Lookup(prompt); ok {
			failed.Answer = OfflinePrefix + ans
			failed.Outcome = OutcomeOffline
			return failed
		}
	}
	failed.Answer = FailureAnswer
	failed.Outcome = OutcomeFailed
	return failed
}

// record never fails the dispatch; the answer still reaches the caller.
func (d *Dispatcher) record(prompt, answer string) {
	if d.log == nil {
		return
	}
	if err := d.log.Append(prompt, answer); err != nil {
		d.logger.Warn("failed to append chat log", zap.Error(err))
	}
}

// Classify maps a client error to a failure reason.
func Classify(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return ReasonStatus
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		return ReasonMalformed
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ReasonMalformed
	}
	return ReasonTransport
}
