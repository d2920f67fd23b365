// Package agent runs the price research loop: it offers the browsing
// toolbox to the model, dispatches the calls it makes, streams progress to
// the caller and finally extracts one structured record per website.
//
// Example usage:
//
//	toolbox := agent.NewToolbox(web.NewToolset(web.DefaultConfig(), vision))
//	pricer := agent.NewPricer(llm.NewRetryProvider(provider), toolbox, agent.WithTurns(10))
//
//	for ev := range pricer.Run(ctx, agent.Request{
//	    Product:  "Whole milk 1L",
//	    Websites: []string{"rewe.de", "edeka.de"},
//	    Session:  sess,
//	}) {
//	    fmt.Println(ev.Type, ev.Progress, ev.Content)
//	}
package agent

import "github.com/entrhq/priceiq/pkg/logging"

const (
	// DefaultModel drives the research turns.
	DefaultModel = "gpt-4.1"
	// DefaultExtractionModel turns the research notes into JSON.
	DefaultExtractionModel = "gpt-4.1-mini"
	// DefaultTurns is the research turn budget.
	DefaultTurns = 10
	// DefaultSentinel is the marker the model writes when research is done.
	DefaultSentinel = "RESEARCH_COMPLETE"

	// PipelineName is the tool name on events the loop itself emits.
	PipelineName = "product_pricer"
)

var agentLog *logging.Logger

func init() {
	var err error
	agentLog, err = logging.NewLogger("agent")
	if err != nil {
		agentLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// Option configures a Pricer.
type Option func(*Pricer)

// WithModel sets the research model.
func WithModel(model string) Option {
	return func(p *Pricer) {
		if model != "" {
			p.model = model
		}
	}
}

// WithExtractionModel sets the model used to extract the results JSON.
func WithExtractionModel(model string) Option {
	return func(p *Pricer) {
		if model != "" {
			p.extractionModel = model
		}
	}
}

// WithTurns sets the maximum number of research turns.
func WithTurns(turns int) Option {
	return func(p *Pricer) {
		if turns > 0 {
			p.turns = turns
		}
	}
}

// WithSentinel sets the completion marker.
func WithSentinel(sentinel string) Option {
	return func(p *Pricer) {
		if sentinel != "" {
			p.sentinel = sentinel
		}
	}
}

// WithBufferSize sets the event channel buffer size.
func WithBufferSize(size int) Option {
	return func(p *Pricer) {
		if size >= 0 {
			p.bufferSize = size
		}
	}
}
