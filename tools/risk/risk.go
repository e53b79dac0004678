package risk

import (
	"context"
	"fmt"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/riskmodel"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// Input resolves the processed dataset from state; the decision model
// passes no arguments.
type Input struct {
	schema.Base
	Table *dataset.Table `json:"-"`
}

func (in *Input) Resolve(state *conversation.State) {
	if in.Table == nil {
		in.Table = state.ProcessedDataset
	}
}

// Output carries the model verdict.
type Output struct {
	schema.Base
	Verdict    riskmodel.Verdict `json:"verdict"`
	Confidence float64           `json:"confidence"`
}

func (out *Output) Apply(state *conversation.State) {
	state.RiskVerdict = out.Verdict
}

func (out *Output) Summary() string {
	return fmt.Sprintf("[Risk assessment complete: %s (confidence %.2f).]", out.Verdict, out.Confidence)
}

// Tool scores the latest processed row with the financial distress model.
type Tool struct {
	tools.Config
	model *riskmodel.Client
}

func New(model *riskmodel.Client, opts ...tools.Option) *Tool {
	ret := &Tool{model: model}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("assess_risk")
	}
	if ret.Description() == "" {
		ret.SetDescription("assess_risk(): score the processed fundamentals with the financial distress model. Requires preprocess first.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	assessment, err := t.model.Assess(ctx, input.Table)
	if err != nil {
		return nil, err
	}
	return &Output{Verdict: assessment.Verdict, Confidence: assessment.Confidence}, nil
}
