package fundamentals

import (
	"context"
	"strings"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
)

func TestRawTableView(t *testing.T) {
	table := dataset.New("calendarYear", "marketCap")
	table.Append("2022", 300.0)

	state := conversation.NewState("t1")
	state.RawDataset = table

	in := &RawViewInput{}
	in.Resolve(state)

	tool := NewRawTable()
	out, err := tool.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows != 1 || out.Columns != 2 {
		t.Errorf("unexpected view %+v", out)
	}
	if !strings.Contains(out.Summary(), "Raw table ready") {
		t.Errorf("unexpected summary %q", out.Summary())
	}
}

func TestProcessedTableViewRequiresPreprocess(t *testing.T) {
	state := conversation.NewState("t1")
	in := &ProcessedViewInput{}
	in.Resolve(state)

	tool := NewProcessedTable()
	_, err := tool.Run(context.Background(), in)
	if err == nil {
		t.Fatal("expected error without a processed dataset")
	}
	if fault.KindOf(err) != fault.Validation {
		t.Errorf("expected validation failure, got %v", fault.KindOf(err))
	}
}
