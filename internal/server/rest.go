package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/logging"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/drive_tools"
)

const (
	errTokenNotSet   = "Access token not set. Use /set-token or x-access-token header."
	errToolNotFound  = "Tool not found"
	errInternal      = "Internal server error"
	defaultFilesPage = 10
	maxFilesPage     = 1000
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type setTokenRequest struct {
	AccessToken string `json:"accessToken"`
}

type setTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleSetToken validates a token and stores it for later requests.
func (sc *ServerContext) handleSetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setTokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "Access token is required")
		return
	}

	valid := sc.holder.Validate(ctx, req.AccessToken)
	sc.metrics.RecordCredentialValidation(ctx, valid)
	if !valid {
		sc.logger.Info("rejected access token", logging.Operation("set_token"), logging.Token(req.AccessToken))
		writeError(w, http.StatusBadRequest, "Invalid access token")
		return
	}

	if err := sc.holder.SetToken(ctx, req.AccessToken); err != nil {
		sc.logger.Error("failed to set access token", logging.Operation("set_token"), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to set access token")
		return
	}
	sc.metrics.RecordCredentialUpdate(ctx, instrumentation.TokenSourceSetToken)
	sc.logger.Info("access token set", logging.Operation("set_token"), logging.Token(req.AccessToken))

	writeJSON(w, http.StatusOK, setTokenResponse{Success: true, Message: "Access token set successfully"})
}

func (sc *ServerContext) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": sc.tools.List()})
}

type fileEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	URI      string `json:"uri"`
}

type fileListResponse struct {
	Files         []fileEntry `json:"files"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// handleListFiles returns one page of files as resources.
func (sc *ServerContext) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageSize := defaultFilesPage
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "pageSize must be a positive integer")
			return
		}
		pageSize = min(n, maxFilesPage)
	}

	client, ok := sc.restClient(w, r)
	if !ok {
		return
	}

	list, err := client.Drive.ListFiles(ctx, &drive.ListOptions{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("pageToken"),
	})
	if err != nil {
		sc.logger.Error("failed to list files", logging.Operation("list_files"), logging.Err(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing files: %s", common.APIErrorMessage(err)))
		return
	}

	resp := fileListResponse{Files: make([]fileEntry, 0, len(list.Files)), NextPageToken: list.NextPageToken}
	for _, f := range list.Files {
		resp.Files = append(resp.Files, fileEntry{ID: f.ID, Name: f.Name, MimeType: f.MimeType, URI: f.URI()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (sc *ServerContext) handleFileContent(w http.ResponseWriter, r *http.Request) {
	sc.runTool(w, r, drive_tools.ReadFileToolName, common.Arguments{"fileId": chi.URLParam(r, "fileId")})
}

func (sc *ServerContext) handleCallTool(w http.ResponseWriter, r *http.Request) {
	args := common.Arguments{}
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBody)).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if args == nil {
		args = common.Arguments{}
	}
	sc.runTool(w, r, chi.URLParam(r, "name"), args)
}

// restClient resolves the held client or writes the error response.
func (sc *ServerContext) restClient(w http.ResponseWriter, r *http.Request) (*google.Client, bool) {
	if !sc.holder.HasToken() {
		writeError(w, http.StatusUnauthorized, errTokenNotSet)
		return nil, false
	}

	client, err := sc.holder.Resolve(r.Context(), "")
	if err != nil {
		if errors.Is(err, google.ErrCredentialsUnavailable) {
			writeError(w, http.StatusUnauthorized, errTokenNotSet)
			return nil, false
		}
		sc.logger.Error("failed to resolve Google client", logging.Err(err))
		writeError(w, http.StatusInternalServerError, errInternal)
		return nil, false
	}
	return client, true
}

// runTool maps a tool call onto HTTP statuses: 401 without a token, 404
// for an unknown tool, 500 on a panic and 200 with the Result otherwise.
func (sc *ServerContext) runTool(w http.ResponseWriter, r *http.Request, name string, args common.Arguments) {
	if !sc.holder.HasToken() {
		writeError(w, http.StatusUnauthorized, errTokenNotSet)
		return
	}

	tool, ok := sc.tools.Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, errToolNotFound)
		return
	}

	client, ok := sc.restClient(w, r)
	if !ok {
		return
	}

	callID := uuid.NewString()
	ctx := common.WithCallInfo(r.Context(), common.CallInfo{ID: callID, Transport: TransportREST})

	result, err := invokeSafely(func() common.Result {
		return tool.Handler(ctx, client, args)
	})
	if err != nil {
		sc.logger.Error("tool call failed", logging.Tool(name), logging.CallID(callID), logging.Err(err))
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func invokeSafely(fn func() common.Result) (result common.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(), nil
}
