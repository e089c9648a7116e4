package mutation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"

	"github.com/picklenerd/counterfeit/pkg/config"
	"github.com/picklenerd/counterfeit/pkg/mapper"
)

// DefaultRequestIDHeader is the header set by requestId mutations.
const DefaultRequestIDHeader = "X-Request-Id"

func newApply(cfg *config.MutationConfig, opts Options) (func(out *mapper.Output) error, error) {
	switch cfg.Type {
	case config.MutationHeaders:
		return setHeaders(cfg.Headers), nil
	case config.MutationStatus:
		return setStatus(cfg.Status), nil
	case config.MutationDelay:
		lo, hi, err := cfg.DelayRange()
		if err != nil {
			return nil, err
		}
		return delay(lo, hi, opts), nil
	case config.MutationFault:
		return fault(cfg.Probability, cfg.StatusCodes, cfg.Message, opts), nil
	case config.MutationJSONPath:
		return setJSONPaths(cfg.Set)
	case config.MutationRequestID:
		return requestID(cfg.Header), nil
	case config.MutationFail:
		return fail(cfg.Message), nil
	default:
		return nil, fmt.Errorf("unknown mutation type %q", cfg.Type)
	}
}

func setHeaders(headers map[string]string) func(out *mapper.Output) error {
	return func(out *mapper.Output) error {
		for k, v := range headers {
			out.Response.Header.Set(k, v)
		}
		return nil
	}
}

func setStatus(code int) func(out *mapper.Output) error {
	return func(out *mapper.Output) error {
		out.Response.Status = code
		return nil
	}
}

// delay sleeps for a random duration in [lo, hi].
func delay(lo, hi time.Duration, opts Options) func(out *mapper.Output) error {
	return func(out *mapper.Output) error {
		d := lo
		if hi > lo {
			d += time.Duration(opts.Float64() * float64(hi-lo))
		}
		if d > 0 {
			opts.Sleep(d)
		}
		return nil
	}
}

// fault replaces the response with a JSON error with the given probability.
func fault(probability float64, codes []int, message string, opts Options) func(out *mapper.Output) error {
	if len(codes) == 0 {
		codes = []int{http.StatusInternalServerError}
	}
	return func(out *mapper.Output) error {
		if probability <= 0 || opts.Float64() >= probability {
			return nil
		}
		code := codes[int(opts.Float64()*float64(len(codes)))%len(codes)]
		msg := message
		if msg == "" {
			msg = http.StatusText(code)
		}
		body, err := json.Marshal(map[string]string{
			"error":   "fault_injected",
			"message": msg,
		})
		if err != nil {
			return err
		}
		out.Response.Status = code
		out.Response.Body = body
		out.Response.Header.Set("Content-Type", "application/json")
		return nil
	}
}

type jsonPathSet struct {
	expr  jp.Expr
	value any
}

// setJSONPaths writes values into JSON response bodies. Bodies that are not
// JSON are left alone.
func setJSONPaths(set map[string]any) (func(out *mapper.Output) error, error) {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	sets := make([]jsonPathSet, 0, len(paths))
	for _, p := range paths {
		x, err := jp.ParseString(p)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath %q: %w", p, err)
		}
		sets = append(sets, jsonPathSet{expr: x, value: set[p]})
	}

	return func(out *mapper.Output) error {
		data, ok := decodeBody(out.Response.Body)
		if !ok {
			return nil
		}
		for _, s := range sets {
			if err := s.expr.Set(data, s.value); err != nil {
				return fmt.Errorf("set %s: %w", s.expr, err)
			}
		}
		var buf bytes.Buffer
		if err := encodeOrdered(&buf, data, out.Response.Body); err != nil {
			return err
		}
		out.Response.Body = buf.Bytes()
		return nil
	}, nil
}

func requestID(header string) func(out *mapper.Output) error {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(out *mapper.Output) error {
		if out.Response.Header.Get(header) == "" {
			out.Response.Header.Set(header, uuid.NewString())
		}
		return nil
	}
}

func fail(message string) func(out *mapper.Output) error {
	if message == "" {
		message = "mutation failed"
	}
	err := errors.New(message)
	return func(out *mapper.Output) error {
		return err
	}
}
