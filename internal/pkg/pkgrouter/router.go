package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

// Handler returns a payload to wrap in the success envelope, or an error to
// map onto a status code. A payload with StatusCode() 204 writes no body.
type Handler func(ctx context.Context, r *http.Request) (any, error)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that mws run in the given order before it.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Optional methods a success payload may implement to shape its envelope.
type (
	statusCoder interface{ StatusCode() int }
	messenger   interface{ Message() string }
	metaer      interface{ Meta() map[string]any }
)

// Stream is a payload written as a raw body instead of the JSON envelope.
// FileName, when set, is sent as an attachment name. The router closes Body.
type Stream struct {
	ContentType string
	FileName    string
	Body        io.ReadCloser
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds the router with recovery, correlation id and request
// logging applied to every route.
func NewRouter(uuid pkguid.StringID) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ro := &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(uuid),
			middlewareLogging,
		},
	}

	ro.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Message: "hi from chemviz"}, http.StatusOK)
	}))

	ro.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Message: "server is running well"}, http.StatusOK)
	}))

	return ro
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// Handle registers a raw http.Handler behind the router's middleware.
func (r *Router) Handle(method, path string, h http.Handler, mws ...Middleware) {
	all := append(append([]Middleware{}, r.mws...), mws...)
	r.hr.Handler(method, path, Chain(h, all...))
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.Handle(method, path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(req.Context(), req)
		if err != nil {
			writeError(req.Context(), w, err)
			return
		}
		writeSuccess(req.Context(), w, resp)
	}), mws...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *pkgerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	if gerr.Type() == pkgerror.TypeServer {
		slog.ErrorContext(ctx, "request failed", "error", gerr.String())
	}

	resp := errorResponse{Message: gerr.Msg()}
	if detail := gerr.Detail(); detail != "" {
		resp.Error = map[string]string{"detail": detail}
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, payload any) {
	if s, ok := payload.(Stream); ok {
		writeStream(ctx, w, s)
		return
	}

	code := http.StatusOK
	if sc, ok := payload.(statusCoder); ok {
		code = sc.StatusCode()
	}

	if code == http.StatusNoContent || payload == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := successResponse{Message: "request has been successfully", Data: payload}
	if m, ok := payload.(messenger); ok {
		resp.Message = m.Message()
	}
	if m, ok := payload.(metaer); ok {
		resp.Meta = m.Meta()
	}

	writeJSON(w, resp, code)
}

func writeStream(ctx context.Context, w http.ResponseWriter, s Stream) {
	defer s.Body.Close()

	contentType := s.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if s.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.FileName}))
	}
	w.WriteHeader(http.StatusOK)

	// headers are gone; a failed copy can only be logged
	if _, err := io.Copy(w, s.Body); err != nil {
		slog.WarnContext(ctx, "failed to stream response", "error", err)
	}
}

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
