// Package fake provides in-memory Drive and Sheets collaborators that
// record every call, for tests of the tool and server layers.
package fake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"google.golang.org/api/googleapi"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/sheets"
)

// Call is one recorded API invocation.
type Call struct {
	Method string
	Args   []any
}

type recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recorder) record(method string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns how many calls were recorded.
func (r *recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// NotFound builds the error Drive returns for a missing file.
func NotFound(id string) error {
	return &googleapi.Error{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("File not found: %s.", id),
	}
}

// Drive is an in-memory drive.API.
type Drive struct {
	recorder

	// Err, when set, fails every call.
	Err error

	files    map[string]*drive.FileInfo
	contents map[string][]byte
	perms    map[string][]*drive.Permission
	nextID   int
}

var _ drive.API = (*Drive)(nil)

// NewDrive creates an empty Drive.
func NewDrive() *Drive {
	return &Drive{
		files:    make(map[string]*drive.FileInfo),
		contents: make(map[string][]byte),
		perms:    make(map[string][]*drive.Permission),
	}
}

// AddFile stores a file and its content.
func (d *Drive) AddFile(file *drive.FileInfo, content []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[file.ID] = file
	if content != nil {
		d.contents[file.ID] = content
	}
}

// File returns a stored file.
func (d *Drive) File(id string) (*drive.FileInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[id]
	return f, ok
}

// Permissions returns the permissions created on a file.
func (d *Drive) Permissions(id string) []*drive.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*drive.Permission(nil), d.perms[id]...)
}

func (d *Drive) ListFiles(_ context.Context, options *drive.ListOptions) (*drive.FileList, error) {
	d.record("ListFiles", options)
	if d.Err != nil {
		return nil, fmt.Errorf("failed to list files: %w", d.Err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.files))
	for id := range d.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := len(ids)
	if options != nil && options.PageSize > 0 && options.PageSize < limit {
		limit = options.PageSize
	}

	list := &drive.FileList{Files: make([]*drive.FileInfo, 0, limit)}
	for _, id := range ids[:limit] {
		list.Files = append(list.Files, d.files[id])
	}
	return list, nil
}

func (d *Drive) GetFile(_ context.Context, fileID string) (*drive.FileInfo, error) {
	d.record("GetFile", fileID)
	if d.Err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, d.Err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, NotFound(fileID))
	}
	return f, nil
}

func (d *Drive) ExportFile(_ context.Context, fileID, mimeType string) (io.ReadCloser, error) {
	d.record("ExportFile", fileID, mimeType)
	return d.body(fileID)
}

func (d *Drive) DownloadFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	d.record("DownloadFile", fileID)
	return d.body(fileID)
}

func (d *Drive) body(fileID string) (io.ReadCloser, error) {
	if d.Err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, d.Err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[fileID]; !ok {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, NotFound(fileID))
	}
	return io.NopCloser(bytes.NewReader(d.contents[fileID])), nil
}

func (d *Drive) CreateFile(_ context.Context, options *drive.CreateOptions) (*drive.FileInfo, error) {
	d.record("CreateFile", options)
	if d.Err != nil {
		return nil, fmt.Errorf("failed to create file: %w", d.Err)
	}

	var parents []string
	if options.ParentID != "" {
		parents = []string{options.ParentID}
	}
	var content []byte
	if options.Content != "" && !drive.IsNative(options.MimeType) {
		content = []byte(options.Content)
	}
	return d.create(options.Name, options.MimeType, parents, content), nil
}

func (d *Drive) CreateFolder(_ context.Context, name, parentID string) (*drive.FileInfo, error) {
	d.record("CreateFolder", name, parentID)
	if d.Err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", d.Err)
	}

	var parents []string
	if parentID != "" {
		parents = []string{parentID}
	}
	return d.create(name, drive.FolderMimeType, parents, nil), nil
}

func (d *Drive) create(name, mimeType string, parents []string, content []byte) *drive.FileInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := fmt.Sprintf("file-%d", d.nextID)
	f := &drive.FileInfo{
		ID:          id,
		Name:        name,
		MimeType:    mimeType,
		Size:        int64(len(content)),
		WebViewLink: "https://drive.google.com/open?id=" + id,
		Parents:     parents,
	}
	d.files[id] = f
	if content != nil {
		d.contents[id] = content
	}
	return f
}

func (d *Drive) DeleteFile(_ context.Context, fileID string) error {
	d.record("DeleteFile", fileID)
	if d.Err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, d.Err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[fileID]; !ok {
		return fmt.Errorf("failed to delete file %s: %w", fileID, NotFound(fileID))
	}
	delete(d.files, fileID)
	delete(d.contents, fileID)
	return nil
}

func (d *Drive) ShareFile(_ context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error) {
	d.record("ShareFile", fileID, options)
	if d.Err != nil {
		return nil, fmt.Errorf("failed to share file: %w", d.Err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[fileID]; !ok {
		return nil, fmt.Errorf("failed to share file: %w", NotFound(fileID))
	}
	p := &drive.Permission{
		ID:           fmt.Sprintf("perm-%d", len(d.perms[fileID])+1),
		Type:         options.Type,
		Role:         options.Role,
		EmailAddress: options.EmailAddress,
	}
	d.perms[fileID] = append(d.perms[fileID], p)
	return p, nil
}

// Sheets is an in-memory sheets.API keyed by spreadsheet ID and range.
type Sheets struct {
	recorder

	// Err, when set, fails every call.
	Err error

	values map[string]map[string][][]interface{}
}

var _ sheets.API = (*Sheets)(nil)

// NewSheets creates an empty Sheets.
func NewSheets() *Sheets {
	return &Sheets{values: make(map[string]map[string][][]interface{})}
}

// SetRange stores the rows returned for a range.
func (s *Sheets) SetRange(spreadsheetID, a1Range string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[spreadsheetID] == nil {
		s.values[spreadsheetID] = make(map[string][][]interface{})
	}
	s.values[spreadsheetID][a1Range] = rows
}

// Range returns the stored rows of a range.
func (s *Sheets) Range(spreadsheetID, a1Range string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[spreadsheetID][a1Range]
}

func (s *Sheets) ReadRange(_ context.Context, spreadsheetID, a1Range string) (*sheets.ValueRange, error) {
	s.record("ReadRange", spreadsheetID, a1Range)
	if s.Err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, s.Err)
	}

	return &sheets.ValueRange{Range: a1Range, Values: s.Range(spreadsheetID, a1Range)}, nil
}

func (s *Sheets) UpdateCell(_ context.Context, spreadsheetID, a1Range string, value interface{}) (*sheets.UpdateResult, error) {
	s.record("UpdateCell", spreadsheetID, a1Range, value)
	if s.Err != nil {
		return nil, fmt.Errorf("failed to update cell %s: %w", a1Range, s.Err)
	}

	s.SetRange(spreadsheetID, a1Range, [][]interface{}{{value}})
	return &sheets.UpdateResult{UpdatedRange: a1Range, UpdatedCells: 1}, nil
}

// Factory is a google.ClientFactory that hands out the same fakes for
// every token and records which tokens it saw.
type Factory struct {
	Drive  *Drive
	Sheets *Sheets

	// Rejected tokens get a client whose calls fail with 401.
	Rejected map[string]bool

	mu     sync.Mutex
	tokens []string
}

// NewFactory creates a Factory with empty fakes.
func NewFactory() *Factory {
	return &Factory{
		Drive:    NewDrive(),
		Sheets:   NewSheets(),
		Rejected: make(map[string]bool),
	}
}

// New implements google.ClientFactory.
func (f *Factory) New(_ context.Context, token string) (*google.Client, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	rejected := f.Rejected[token]
	f.mu.Unlock()

	if rejected {
		unauthorized := &googleapi.Error{Code: http.StatusUnauthorized, Message: "Invalid Credentials"}
		d := NewDrive()
		d.Err = unauthorized
		s := NewSheets()
		s.Err = unauthorized
		return &google.Client{Drive: d, Sheets: s}, nil
	}
	return &google.Client{Drive: f.Drive, Sheets: f.Sheets}, nil
}

// Tokens returns the tokens clients were built for, in order.
func (f *Factory) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// Holder returns a google.Holder backed by the factory.
func (f *Factory) Holder(fallbackToken string) *google.Holder {
	return google.NewHolder(f.New, fallbackToken)
}
