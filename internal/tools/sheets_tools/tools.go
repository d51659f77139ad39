package sheets_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

// Tool names.
const (
	ReadToolName       = "gsheets_read"
	UpdateCellToolName = "gsheets_update_cell"
)

// Tools returns the Sheets tools, update first.
func Tools() []common.Tool {
	return []common.Tool{updateCellTool(), readTool()}
}

func sheetsOp(operation string) instrumentation.APIOperation {
	return instrumentation.APIOperation{Service: instrumentation.ServiceSheets, Operation: operation}
}

func updateCellTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(UpdateCellToolName,
			mcp.WithDescription("Update a single cell in a Google Sheets spreadsheet. The value is parsed as if typed into the UI, so numbers and formulas are recognised."),
			mcp.WithString("spreadsheetId",
				mcp.Required(),
				mcp.Description("ID of the spreadsheet"),
			),
			mcp.WithString("range",
				mcp.Required(),
				mcp.Description("Cell to update in A1 notation (e.g., 'Sheet1!A1')"),
			),
			mcp.WithString("value",
				mcp.Required(),
				mcp.Description("New value of the cell"),
			),
		),
		API:     sheetsOp(instrumentation.OperationUpdate),
		Handler: handleUpdateCell,
	}
}

func handleUpdateCell(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	spreadsheetID, err := args.Require("spreadsheetId")
	if err != nil {
		return common.FailedTo("updating cell", err)
	}
	a1Range, err := args.Require("range")
	if err != nil {
		return common.FailedTo("updating cell", err)
	}
	value, ok := args.Value("value")
	if !ok {
		return common.Errorf("Error updating cell: value is required")
	}

	res, err := client.Sheets.UpdateCell(ctx, spreadsheetID, a1Range, value)
	if err != nil {
		return common.FailedTo("updating cell", err)
	}

	updated := a1Range
	if res.UpdatedRange != "" {
		updated = res.UpdatedRange
	}
	return common.TextResult(fmt.Sprintf("Updated cell %s to value: %v", updated, value))
}

func readTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(ReadToolName,
			mcp.WithDescription("Read data from a Google Sheets spreadsheet"),
			mcp.WithString("spreadsheetId",
				mcp.Required(),
				mcp.Description("ID of the spreadsheet"),
			),
			mcp.WithString("range",
				mcp.Required(),
				mcp.Description("Range to read in A1 notation (e.g., 'Sheet1!A1:C10')"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		API:     sheetsOp(instrumentation.OperationGet),
		Handler: handleRead,
	}
}

func handleRead(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	spreadsheetID, err := args.Require("spreadsheetId")
	if err != nil {
		return common.FailedTo("reading spreadsheet", err)
	}
	a1Range, err := args.Require("range")
	if err != nil {
		return common.FailedTo("reading spreadsheet", err)
	}

	vr, err := client.Sheets.ReadRange(ctx, spreadsheetID, a1Range)
	if err != nil {
		return common.FailedTo("reading spreadsheet", err)
	}

	returned := a1Range
	if vr.Range != "" {
		returned = vr.Range
	}
	if len(vr.Values) == 0 {
		return common.TextResult(fmt.Sprintf("No data found in range %s", returned))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Range: %s\n\n", returned)
	for i, row := range vr.Values {
		if i > 0 {
			b.WriteByte('\n')
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		b.WriteString(strings.Join(cells, "\t"))
	}
	return common.TextResult(b.String())
}
