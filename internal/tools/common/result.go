package common

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ContentTypeText is the only content type tools produce.
const ContentTypeText = "text"

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call. Failures are reported in band with
// IsError set; IsError is always serialized.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// TextResult returns a successful result with a single text block.
func TextResult(text string) Result {
	return Result{Content: []Content{{Type: ContentTypeText, Text: text}}}
}

// ErrorResult returns a failed result with a single text block.
func ErrorResult(text string) Result {
	return Result{Content: []Content{{Type: ContentTypeText, Text: text}}, IsError: true}
}

// Errorf formats an ErrorResult.
func Errorf(format string, args ...any) Result {
	return ErrorResult(fmt.Sprintf(format, args...))
}

// Text joins the text of all content blocks.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

// APIErrorMessage returns the message Google attached to err, or err's text
// when err does not come from a Google API.
func APIErrorMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// FailedTo formats the error result of a remote call, e.g. "Error deleting file: File not found: x.".
func FailedTo(action string, err error) Result {
	return Errorf("Error %s: %s", action, APIErrorMessage(err))
}
