// Package server exposes the gateway services as a JSON-RPC 2.0 API
// over HTTP. The server owns all syntax validation of raw inputs; the
// services re-check semantic invariants only.
package server

import (
	"bytes"
	"encoding/json"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result
// and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(id json.RawMessage, result interface{}) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func failure(id json.RawMessage, rpcErr *RPCError) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: rpcErr}
}

func parseError() *RPCError {
	return &RPCError{Code: codeParseError, Message: "Parse error"}
}

func invalidRequest(message string) *RPCError {
	return &RPCError{Code: codeInvalidRequest, Message: "Invalid Request: " + message}
}

func methodNotFound() *RPCError {
	return &RPCError{Code: codeMethodNotFound, Message: "Method not found"}
}

func invalidParams(message string) *RPCError {
	return &RPCError{Code: codeInvalidParams, Message: "Invalid params: " + message}
}

// validateEnvelope enforces the JSON-RPC 2.0 framing rules before any
// method dispatch.
func validateEnvelope(req *Request) *RPCError {
	if req.JSONRPC != "2.0" {
		return invalidRequest("jsonrpc must be '2.0'")
	}
	if req.Method == "" {
		return invalidRequest("method is required")
	}
	if containsControlChars(req.Method) {
		return invalidRequest("method name contains control characters")
	}
	if !validRequestID(req.ID) {
		return invalidRequest("id must be a string, number or null")
	}
	return nil
}

// validRequestID accepts the id shapes JSON-RPC 2.0 allows: absent,
// null, string or number.
func validRequestID(id json.RawMessage) bool {
	trimmed := bytes.TrimSpace(id)
	if len(trimmed) == 0 {
		return true
	}
	switch trimmed[0] {
	case '{', '[':
		return false
	}
	return true
}
