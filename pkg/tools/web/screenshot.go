package web

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/priceiq/pkg/agent/tools"
	"github.com/entrhq/priceiq/pkg/llm"
	"github.com/entrhq/priceiq/pkg/logging"
	"github.com/entrhq/priceiq/pkg/types"
)

const screenshotTimeoutMessage = "Screenshot model timed out after 3 minutes"

var screenshotLog = logging.MustLogger("screenshot")

// ScreenshotTool renders a page and asks a vision model about the image.
// While the model works it emits a progress event every poll interval; it
// stops early when the session is stopped or the timeout passes.
type ScreenshotTool struct {
	vision       llm.Provider
	model        string
	budget       int
	pollInterval time.Duration
	timeout      time.Duration
}

type screenshotArgs struct {
	URL   string `json:"url" jsonschema_description:"url of the web to take screenshot of"`
	Query string `json:"query" jsonschema_description:"what are you looking for in the screenshot"`
}

// NewScreenshotTool creates a screenshot tool backed by the vision provider.
func NewScreenshotTool(cfg Config, vision llm.Provider) *ScreenshotTool {
	return &ScreenshotTool{
		vision:       vision,
		model:        cfg.VisionModel,
		budget:       cfg.TokenBudget,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
	}
}

// ID returns the tool ID.
func (t *ScreenshotTool) ID() tools.ID { return tools.Screenshot }

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Take a screenshot of a given url."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]any {
	return tools.SchemaFor(screenshotArgs{})
}

// Execute takes the screenshot and supervises the vision call.
func (t *ScreenshotTool) Execute(ctx context.Context, call tools.Call) (*tools.Result, error) {
	var args screenshotArgs
	if err := call.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if t.vision == nil {
		return nil, fmt.Errorf("no vision model configured")
	}

	shot, err := call.Session.Browser.Screenshot(ctx, args.URL)
	if err != nil {
		return nil, err
	}
	if shot.Failure != nil {
		return t.text(fmt.Sprintf("Screenshot failed (%s): %v", shot.Failure.Kind, shot.Failure.Err)), nil
	}

	imageURL, err := jpegDataURL(shot.Data)
	if err != nil {
		return t.text("Error processing image: " + err.Error()), nil
	}
	return t.analyze(ctx, call, imageURL, args.Query), nil
}

type visionResult struct {
	resp *llm.Response
	err  error
}

// analyze races the vision call against session stop and the timeout.
// Exactly one of them decides the result.
func (t *ScreenshotTool) analyze(ctx context.Context, call tools.Call, imageURL, query string) *tools.Result {
	visionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan visionResult, 1)
	go func() {
		resp, err := t.vision.Respond(visionCtx, &llm.Request{
			Model: t.model,
			Input: []llm.Item{llm.NewImageMessage(query, imageURL)},
		})
		results <- visionResult{resp: resp, err: err}
	}()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()

	stopped := call.Session.Flag.Done()
	percentage := 10
	t.progress(call, percentage)

	for {
		select {
		case r := <-results:
			if r.err != nil {
				screenshotLog.Warnf("vision call failed: %v", r.err)
				return t.text("Error processing image: " + r.err.Error())
			}
			return tools.Done(tools.Output{
				Display:     r.resp.OutputText,
				Raw:         "Screenshot model analysis completed:\n " + r.resp.OutputText,
				TokenBudget: t.budget,
			})
		case <-stopped:
			screenshotLog.Infof("session %s stopped during screenshot analysis", call.Session.ID)
			return tools.EndOfMessage()
		case <-ctx.Done():
			return tools.EndOfMessage()
		case <-deadline.C:
			screenshotLog.Warnf("vision call timed out after %s", t.timeout)
			return t.text(screenshotTimeoutMessage)
		case <-ticker.C:
			percentage = nextPercentage(percentage)
			t.progress(call, percentage)
		}
	}
}

// nextPercentage climbs by 10 up to 90, then falls back to 50 so a long
// analysis keeps showing movement.
func nextPercentage(p int) int {
	if p >= 90 {
		return 50
	}
	return min(p+10, 90)
}

func (t *ScreenshotTool) progress(call tools.Call, percentage int) {
	if call.Emit == nil {
		return
	}
	call.Emit(types.NewPercentProgressEvent(tools.Screenshot.String(),
		fmt.Sprintf("◈ vision model working on the screenshot... ◈ (%d%%)", percentage), percentage))
}

func (t *ScreenshotTool) text(s string) *tools.Result {
	return tools.Done(tools.Output{Display: s, Raw: s, TokenBudget: t.budget})
}
