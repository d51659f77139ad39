// Package sheets wraps the Google Sheets v4 values API.
package sheets

import (
	"context"
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// ValueInputOption makes Sheets parse updates as if typed into the UI,
// so "42" becomes a number and "=SUM(A1:A3)" a formula.
const ValueInputOption = "USER_ENTERED"

// ValueRange is the result of reading a range.
type ValueRange struct {
	// Range is the A1 range Sheets actually returned
	Range string `json:"range"`

	// Values holds the rows; trailing empty cells are omitted by the API
	Values [][]interface{} `json:"values"`
}

// UpdateResult summarizes a write.
type UpdateResult struct {
	UpdatedRange string `json:"updatedRange"`
	UpdatedCells int64  `json:"updatedCells"`
}

// API is the subset of Google Sheets used by the tool handlers.
type API interface {
	ReadRange(ctx context.Context, spreadsheetID, a1Range string) (*ValueRange, error)
	UpdateCell(ctx context.Context, spreadsheetID, a1Range string, value interface{}) (*UpdateResult, error)
}

// Client wraps the Google Sheets API service
type Client struct {
	service *sheets.Service
}

var _ API = (*Client)(nil)

// NewClient creates a Sheets client authenticated through opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &Client{service: service}, nil
}

// ReadRange reads the values of a range in A1 notation.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, a1Range string) (*ValueRange, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if a1Range == "" {
		return nil, fmt.Errorf("range is required")
	}

	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, err)
	}

	return &ValueRange{Range: resp.Range, Values: resp.Values}, nil
}

// UpdateCell writes a single value at a1Range.
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, a1Range string, value interface{}) (*UpdateResult, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheetID is required")
	}
	if a1Range == "" {
		return nil, fmt.Errorf("range is required")
	}

	valueRange := &sheets.ValueRange{
		Range:  a1Range,
		Values: [][]interface{}{{value}},
	}

	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, a1Range, valueRange).
		ValueInputOption(ValueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update cell %s: %w", a1Range, err)
	}

	return &UpdateResult{UpdatedRange: resp.UpdatedRange, UpdatedCells: resp.UpdatedCells}, nil
}
