package fundamentals

import (
	"context"
	"fmt"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// The table views do no work of their own. They verify the requested
// dataset is loaded and hand control to the table finalizer, which reads
// the dataset back off the state to render the excerpt and the attachment.

// RawViewInput resolves the raw dataset from state.
type RawViewInput struct {
	schema.Base
	Table *dataset.Table `json:"-"`
}

func (in *RawViewInput) Resolve(state *conversation.State) {
	if in.Table == nil {
		in.Table = state.RawDataset
	}
}

// ProcessedViewInput resolves the processed dataset from state.
type ProcessedViewInput struct {
	schema.Base
	Table *dataset.Table `json:"-"`
}

func (in *ProcessedViewInput) Resolve(state *conversation.State) {
	if in.Table == nil {
		in.Table = state.ProcessedDataset
	}
}

// ViewOutput reports what the finalizer is about to display.
type ViewOutput struct {
	schema.Base
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

func (out *ViewOutput) Summary() string {
	return fmt.Sprintf("[%s table ready to display: %d rows, %d columns.]", out.Name, out.Rows, out.Columns)
}

// RawTableTool exposes the raw dataset to the table finalizer.
type RawTableTool struct {
	tools.Config
}

func NewRawTable(opts ...tools.Option) *RawTableTool {
	ret := new(RawTableTool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("fetch_raw_table")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_raw_table(): display the fetched raw fundamentals as a table. Requires fetch_fundamentals first.")
	}
	return ret
}

func (t *RawTableTool) Run(_ context.Context, input *RawViewInput) (*ViewOutput, error) {
	if input.Table == nil || input.Table.Len() == 0 {
		return nil, fault.Errorf(fault.Validation, "fetch_raw_table", "no raw dataset loaded, run fetch_fundamentals first")
	}
	return &ViewOutput{Name: "Raw", Rows: input.Table.Len(), Columns: len(input.Table.Columns)}, nil
}

// ProcessedTableTool exposes the processed dataset to the table finalizer.
type ProcessedTableTool struct {
	tools.Config
}

func NewProcessedTable(opts ...tools.Option) *ProcessedTableTool {
	ret := new(ProcessedTableTool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("fetch_processed_table")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_processed_table(): display the derived fundamentals as a table. Requires preprocess first.")
	}
	return ret
}

func (t *ProcessedTableTool) Run(_ context.Context, input *ProcessedViewInput) (*ViewOutput, error) {
	if input.Table == nil || input.Table.Len() == 0 {
		return nil, fault.Errorf(fault.Validation, "fetch_processed_table", "no processed dataset loaded, run preprocess first")
	}
	return &ViewOutput{Name: "Processed", Rows: input.Table.Len(), Columns: len(input.Table.Columns)}, nil
}
