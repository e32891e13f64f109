// Package wire defines the JSON request and response exchanged by the HTTP
// playground, the WASI module and the wasm host, and runs a request against
// the engine: compile once, evaluate every row.
package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/exprbridge/internal/cache"
	"github.com/specialistvlad/exprbridge/internal/compiler"
	"github.com/specialistvlad/exprbridge/internal/ctxlog"
	"github.com/specialistvlad/exprbridge/internal/diag"
	"github.com/specialistvlad/exprbridge/internal/evaluator"
	"github.com/zclconf/go-cty/cty/function"
)

// Request asks for Expression to be compiled against Inputs and evaluated
// once per row. Each row must have len(Inputs) values.
type Request struct {
	Expression string     `json:"expression"`
	Inputs     []string   `json:"inputs"`
	Rows       [][]string `json:"rows"`
}

// Result is the outcome of one row. Exactly one of Result and an error
// Diagnostic is set.
type Result struct {
	Result     string          `json:"result,omitempty"`
	Diagnostic diag.Diagnostic `json:"diagnostic"`
}

// Response carries the compile diagnostic, the canonical expression text
// and one Result per row. Results is empty when compilation failed.
type Response struct {
	Compile   diag.Diagnostic `json:"compile"`
	Canonical string          `json:"canonical,omitempty"`
	Results   []Result        `json:"results,omitempty"`
}

// Observer receives timing for each engine call. *metrics.Collector
// implements it.
type Observer interface {
	ObserveCompile(kind diag.Kind, d time.Duration)
	ObserveEvaluate(kind diag.Kind, d time.Duration)
}

// Runner executes requests. The zero Runner compiles without a cache and
// without functions.
type Runner struct {
	Cache     *cache.Cache
	Functions map[string]function.Function
	MaxBytes  int
	Observer  Observer
}

// Run compiles req.Expression and evaluates every row. It never fails:
// every problem is reported in the response.
func (r *Runner) Run(ctx context.Context, req Request) Response {
	logger := ctxlog.FromContext(ctx)

	start := time.Now()
	expr, err := r.Cache.GetOrCompile(req.Expression, req.Inputs, func() (*compiler.Expression, error) {
		return compiler.Compile(ctx, req.Expression, req.Inputs,
			compiler.WithFunctions(r.Functions),
			compiler.WithMaxBytes(r.MaxBytes),
		)
	})
	r.observe(func(o Observer) { o.ObserveCompile(diag.KindOf(err), time.Since(start)) })
	if err != nil {
		logger.Debug("Wire request failed to compile.", "error", err)
		return Response{Compile: diag.FromError(err)}
	}

	resp := Response{
		Canonical: expr.String(),
		Results:   make([]Result, len(req.Rows)),
	}
	for i, row := range req.Rows {
		start := time.Now()
		out, err := evaluator.Evaluate(ctx, expr, row)
		r.observe(func(o Observer) { o.ObserveEvaluate(diag.KindOf(err), time.Since(start)) })
		resp.Results[i] = Result{Result: out, Diagnostic: diag.FromError(err)}
	}
	logger.Debug("Wire request evaluated.", "rows", len(req.Rows))
	return resp
}

func (r *Runner) observe(fn func(Observer)) {
	if r.Observer != nil {
		fn(r.Observer)
	}
}

// DecodeRequest reads one JSON request. Unknown fields are rejected.
func DecodeRequest(rd io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

// DecodeResponse reads one JSON response.
func DecodeResponse(rd io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(rd).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("invalid response: %w", err)
	}
	return resp, nil
}

// Encode writes v as one line of JSON.
func Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
