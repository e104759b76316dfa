package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/jonwraymond/discogstools/observe"
)

// Tool names exposed to the host.
const (
	NameSearchReleases    = "search_releases"
	NameGetReleaseDetails = "get_release_details"

	toolNamespace = "discogs"
)

var (
	// ErrUnknownTool is returned by Call for an unregistered name.
	ErrUnknownTool = errors.New("tools: unknown tool")

	// ErrInvalidArguments is returned by Call when arguments do not decode.
	ErrInvalidArguments = errors.New("tools: invalid arguments")
)

// Definition describes one tool to the host.
type Definition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// Result is the outcome of one Call.
type Result struct {
	// Value is []ReleaseRecord or *ReleaseDetailRecord (possibly nil).
	Value         any            `json:"value"`
	Notifications []Notification `json:"notifications"`
}

// IsError reports whether the call sent any error notification.
func (r *Result) IsError() bool {
	for _, n := range r.Notifications {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}

type invokeFunc func(ctx context.Context, n Notifier, raw json.RawMessage) (any, error)

type entry struct {
	def    Definition
	meta   observe.ToolMeta
	invoke invokeFunc
}

// Registry holds the tool definitions and dispatches calls.
type Registry struct {
	entries map[string]entry
	mw      *observe.Middleware
}

// NewRegistry registers the toolset's operations. A nil middleware disables
// instrumentation.
func NewRegistry(ts *Toolset, mw *observe.Middleware) *Registry {
	if mw == nil {
		mw = observe.NewMiddleware(nil, nil, nil)
	}
	r := &Registry{entries: make(map[string]entry, 2), mw: mw}

	r.register(NameSearchReleases,
		"Search for releases on Discogs. At least one search parameter must be provided.",
		&SearchArgs{},
		func(ctx context.Context, n Notifier, raw json.RawMessage) (any, error) {
			var args SearchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return ts.SearchReleases(ctx, n, args), nil
		},
	)
	r.register(NameGetReleaseDetails,
		"Get genres, styles, tracklist and images of a single Discogs release.",
		&DetailsArgs{},
		func(ctx context.Context, n Notifier, raw json.RawMessage) (any, error) {
			var args DetailsArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return ts.GetReleaseDetails(ctx, n, args.ReleaseID), nil
		},
	)
	return r
}

func (r *Registry) register(name, description string, args any, invoke invokeFunc) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(args)
	schema.Version = ""
	schema.ID = ""

	r.entries[name] = entry{
		def: Definition{
			Name:        name,
			Description: description,
			InputSchema: schema,
		},
		meta:   observe.ToolMeta{Namespace: toolNamespace, Name: name},
		invoke: invoke,
	}
}

// List returns the tool definitions sorted by name.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call decodes raw and invokes the named tool. Errors are returned only for
// unknown tools and undecodable arguments; tool failures are reported in the
// Result's notifications.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (*Result, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	exec := r.mw.Wrap(func(ctx context.Context, _ observe.ToolMeta, input any) (any, error) {
		rec := NewRecorder()
		value, err := e.invoke(ctx, rec, input.(json.RawMessage))
		if err != nil {
			return nil, err
		}
		return &Result{Value: value, Notifications: rec.Notifications()}, nil
	})

	out, err := exec(ctx, e.meta, raw)
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
