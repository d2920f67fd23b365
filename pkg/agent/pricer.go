package agent

import (
	"context"
	"strings"

	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/session"
	"github.com/entrhq/priceiq/pkg/types"
)

// Pricer runs price research sessions.
type Pricer struct {
	provider        llm.Provider
	toolbox         *Toolbox
	model           string
	extractionModel string
	turns           int
	sentinel        string
	bufferSize      int
}

// NewPricer creates a Pricer. provider should already retry transient
// failures; see llm.NewRetryProvider.
func NewPricer(provider llm.Provider, toolbox *Toolbox, opts ...Option) *Pricer {
	p := &Pricer{
		provider:        provider,
		toolbox:         toolbox,
		model:           DefaultModel,
		extractionModel: DefaultExtractionModel,
		turns:           DefaultTurns,
		sentinel:        DefaultSentinel,
		bufferSize:      16,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request describes one research run.
type Request struct {
	Product  string
	Websites []string
	Session  *session.Session
	StreamID string
}

// Run starts the research in a goroutine and returns its event stream. The
// session flag is started before the first turn and stopped when the run
// ends; stopping it earlier aborts the run with a single endOfMessage event.
// The channel is closed after the last event.
func (p *Pricer) Run(ctx context.Context, req Request) <-chan *types.ToolEvent {
	events := make(chan *types.ToolEvent, p.bufferSize)
	req.Session.Flag.Start()

	go func() {
		defer close(events)
		defer req.Session.Flag.Stop()

		emit := func(ev *types.ToolEvent) {
			if ev.StreamID == "" {
				ev.StreamID = req.StreamID
			}
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		p.run(ctx, req, emit)
	}()
	return events
}

func (p *Pricer) run(ctx context.Context, req Request, emit func(*types.ToolEvent)) {
	sess := req.Session
	conv := newConversation(buildSystemPrompt(req.Product, req.Websites, p.sentinel))
	specs := p.toolbox.Specs()
	agentLog.Infof("research %q on %d sites, session %s, %d turns", req.Product, len(req.Websites), sess.ID, p.turns)

	for turn := 0; turn < p.turns; turn++ {
		resp, err := p.provider.Respond(ctx, &llm.Request{
			Model: p.model,
			Input: conv.Items(),
			Tools: specs,
		})
		if err != nil {
			if ctx.Err() != nil || !sess.Flag.Active() {
				emit(types.NewEndOfMessageEvent())
				return
			}
			agentLog.Errorf("turn %d: model call failed: %v", turn+1, err)
			emit(types.NewResultEvent(PipelineName, "Model call failed – aborting."))
			return
		}

		if !sess.Flag.Active() {
			agentLog.Infof("session %s stopped at turn %d", sess.ID, turn+1)
			emit(types.NewEndOfMessageEvent())
			return
		}

		for _, item := range resp.Output {
			switch item.Type {
			case llm.ItemMessage:
				if item.Text == "" {
					continue
				}
				conv.addAssistant(item.Text)
				ev := types.NewProgressEvent(PipelineName, "◈ agent's thinking ◈ \n... "+item.Text)
				ev.Content = item.Text
				emit(ev)

			case llm.ItemFunctionCall:
				emit(types.NewPercentProgressEvent(item.Name, "◇ initiating tool ◇ "+item.Name+"...", 0))
				output, ended := p.toolbox.Dispatch(ctx, sess, item, emit)
				if ended {
					emit(types.NewEndOfMessageEvent())
					return
				}
				conv.addToolCall(item, output)
			}
		}

		if strings.Contains(resp.OutputText, p.sentinel) {
			agentLog.Infof("research complete after %d turns", turn+1)
			break
		}
	}

	emit(types.NewPercentProgressEvent(PipelineName, "◆ Synthesis Phase ◆\n▸ Consolidating market data into structured insights...", 90))

	results := p.extract(ctx, conv.notes(), req.Websites)
	content, err := encodeResults(results)
	if err != nil {
		agentLog.Errorf("failed to encode results: %v", err)
		content, _ = encodeResults(types.FailResults(req.Websites))
	}
	emit(types.NewFinalResultEvent(PipelineName, "Completed product pricer module.", content))
}
