package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/biocommander/engine/internal/dispatcher"
	"github.com/biocommander/engine/pkg/rules"
)

const maxRequestSize = 1 << 20

// request is one line read from the host connection.
type request struct {
	ID        json.RawMessage   `json:"id,omitempty"`
	Command   string            `json:"command"`
	Authority string            `json:"authority"`
	Args      []json.RawMessage `json:"args"`
}

// response is written for every request, in request order.
type response struct {
	ID       json.RawMessage `json:"id,omitempty"`
	OK       bool            `json:"ok"`
	Result   any             `json:"result,omitempty"`
	Code     string          `json:"code,omitempty"`
	Category string          `json:"category,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type commandDispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// serve reads line-delimited JSON requests from in and writes one response
// line per request to out until in is exhausted or ctx is done.
func serve(ctx context.Context, in io.Reader, out io.Writer, d commandDispatcher, logger *slog.Logger) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), maxRequestSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	enc := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read request: %w", err)
					}
				default:
				}
				return nil
			}
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}
			if err := enc.Encode(handle(line, d, logger)); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

func handle(line []byte, d commandDispatcher, logger *slog.Logger) response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return response{Error: fmt.Sprintf("invalid request: %v", err)}
	}
	resp := response{ID: req.ID}
	if req.Command == "" {
		resp.Error = "invalid request: missing command"
		return resp
	}

	args, err := argStrings(req.Args)
	if err != nil {
		resp.Error = fmt.Sprintf("invalid request: %v", err)
		return resp
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   req.Command,
		Authority: req.Authority,
		Args:      args,
		Timestamp: time.Now(),
	})
	if err != nil {
		resp.Error = err.Error()
		if code := rules.CodeOf(err); code != "" {
			resp.Code = string(code)
			resp.Category = string(code.Category())
		} else {
			logger.Debug("Command failed", "command", req.Command, "error", err)
		}
		return resp
	}
	resp.OK = true
	resp.Result = result
	return resp
}

// argStrings flattens JSON arguments to the string form the parser expects.
// Strings are unquoted, every other value keeps its JSON text.
func argStrings(raw []json.RawMessage) ([]string, error) {
	out := make([]string, len(raw))
	for i, r := range raw {
		if len(r) > 0 && r[0] == '"' {
			if err := json.Unmarshal(r, &out[i]); err != nil {
				return nil, fmt.Errorf("arg %d: %w", i, err)
			}
			continue
		}
		if string(r) == "null" {
			continue
		}
		out[i] = string(r)
	}
	return out, nil
}
