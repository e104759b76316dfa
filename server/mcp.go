package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	perrors "github.com/jmgilman/go/errors"

	"github.com/jonwraymond/discogstools/tools"
)

// ProtocolVersion is the tool protocol revision reported by initialize.
const ProtocolVersion = "2025-03-26"

// JSON-RPC method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// ToolCaller lists and invokes tools. *tools.Registry implements it.
type ToolCaller interface {
	List() []tools.Definition
	Call(ctx context.Context, name string, raw json.RawMessage) (*tools.Result, error)
}

var _ ToolCaller = (*tools.Registry)(nil)

// Info identifies the server in the initialize result.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      Info           `json:"serverInfo"`
}

type listResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is one item of a tools/call result's content list.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the tools/call result.
type CallResult struct {
	Content           []Content            `json:"content"`
	StructuredContent any                  `json:"structuredContent"`
	IsError           bool                 `json:"isError"`
	Notifications     []tools.Notification `json:"notifications"`
}

// dispatcher routes JSON-RPC requests to the tool host.
type dispatcher struct {
	tools ToolCaller
	info  Info
}

// handle returns nil for notifications.
func (d *dispatcher) handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != jsonrpcVersion || req.Method == "" || !validID(req.ID) {
		return errorResponse(req.ID, newError(CodeInvalidRequest, "invalid request", nil, ""))
	}

	result, rpcErr := d.invoke(ctx, req)
	if req.IsNotification() {
		return nil
	}
	if rpcErr != nil {
		return errorResponse(req.ID, rpcErr)
	}
	return resultResponse(req.ID, result)
}

func (d *dispatcher) invoke(ctx context.Context, req *Request) (any, *Error) {
	switch req.Method {
	case MethodInitialize:
		return initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{"listChanged": false}},
			ServerInfo:      d.info,
		}, nil
	case MethodInitialized:
		return struct{}{}, nil
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return listResult{Tools: d.tools.List()}, nil
	case MethodToolsCall:
		return d.call(ctx, req.Params)
	default:
		err := fmt.Errorf("method %q not found", req.Method)
		return nil, newError(CodeMethodNotFound, "method not found", err, perrors.CodeNotFound)
	}
}

func (d *dispatcher) call(ctx context.Context, raw json.RawMessage) (any, *Error) {
	var params callParams
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, newError(CodeInvalidParams, "invalid params", errors.New("params are required"), perrors.CodeInvalidInput)
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, newError(CodeInvalidParams, "invalid params", err, perrors.CodeInvalidInput)
	}
	if params.Name == "" {
		return nil, newError(CodeInvalidParams, "invalid params", errors.New("tool name is required"), perrors.CodeInvalidInput)
	}

	res, err := d.tools.Call(ctx, params.Name, params.Arguments)
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return nil, newError(CodeInvalidParams, "unknown tool", err, perrors.CodeNotFound)
	case errors.Is(err, tools.ErrInvalidArguments):
		return nil, newError(CodeInvalidParams, "invalid arguments", err, perrors.CodeInvalidInput)
	case err != nil:
		return nil, newError(CodeInternalError, "internal error", err, perrors.CodeInternal)
	}

	return newCallResult(res)
}

func newCallResult(res *tools.Result) (*CallResult, *Error) {
	text, err := json.Marshal(res.Value)
	if err != nil {
		return nil, newError(CodeInternalError, "internal error", err, perrors.CodeInternal)
	}
	notes := res.Notifications
	if notes == nil {
		notes = []tools.Notification{}
	}
	return &CallResult{
		Content:           []Content{{Type: "text", Text: string(text)}},
		StructuredContent: res.Value,
		IsError:           res.IsError(),
		Notifications:     notes,
	}, nil
}
