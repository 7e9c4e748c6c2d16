package jsonrpc

import (
	"encoding/json"
	"errors"
	"strconv"
)

const Version = "2.0"

// RawMessage is a raw JSON value that delays unmarshaling.
type RawMessage = json.RawMessage

// Message is a decoded JSON-RPC 2.0 message: *Request, *Notification or
// *Response.
type Message interface {
	isJSONRPC()
}

// Request expects a Response carrying the same ID.
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

// Notification is a request without an ID; nothing answers it.
type Notification struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

// Response answers a Request. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Result  RawMessage `json:"result,omitempty"`
	Error   *Error     `json:"error,omitempty"`
}

func (*Request) isJSONRPC()      {}
func (*Notification) isJSONRPC() {}
func (*Response) isJSONRPC()     {}

// ID is a request identifier. The zero ID is null.
type ID struct {
	num   int64
	str   string
	isStr bool
	set   bool
}

// IntID returns a numeric ID.
func IntID(v int64) ID { return ID{num: v, set: true} }

// StringID returns a string ID.
func StringID(v string) ID { return ID{str: v, isStr: true, set: true} }

// IsValid reports whether id is not null.
func (id ID) IsValid() bool { return id.set }

// String returns a key that distinguishes 1 from "1".
func (id ID) String() string {
	switch {
	case !id.set:
		return "null"
	case id.isStr:
		return "s:" + id.str
	default:
		return "n:" + strconv.FormatInt(id.num, 10)
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case !id.set:
		return []byte("null"), nil
	case id.isStr:
		return json.Marshal(id.str)
	default:
		return strconv.AppendInt(nil, id.num, 10), nil
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID{}
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &id.num); err == nil {
		id.set = true
		return nil
	}
	if err := json.Unmarshal(data, &id.str); err == nil {
		id.isStr, id.set = true, true
		return nil
	}
	return Errorf(CodeInvalidRequest, "id must be a number, string, or null")
}

// envelope holds every member any message kind may carry.
type envelope struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Method  string     `json:"method,omitempty"`
	Params  RawMessage `json:"params,omitempty"`
	Result  RawMessage `json:"result,omitempty"`
	Error   *Error     `json:"error,omitempty"`
}

// DecodeMessage classifies data by its members: a method with an id is a
// request, a method alone a notification, and anything else a response.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, Errorf(CodeParseError, "failed to parse JSON-RPC message")
	}
	switch {
	case env.Method != "" && env.ID.IsValid():
		return &Request{JSONRPC: env.JSONRPC, ID: env.ID, Method: env.Method, Params: env.Params}, nil
	case env.Method != "":
		return &Notification{JSONRPC: env.JSONRPC, Method: env.Method, Params: env.Params}, nil
	default:
		return &Response{JSONRPC: env.JSONRPC, ID: env.ID, Result: env.Result, Error: env.Error}, nil
	}
}

// NewResponse answers id with result, or with err when it is non-nil.
// Errors that are not *Error become CodeInternalError.
func NewResponse(id ID, result any, err error) *Response {
	resp := &Response{JSONRPC: Version, ID: id}
	if err != nil {
		resp.Error = AsError(err)
		return resp
	}
	if result == nil {
		resp.Result = RawMessage("null")
		return resp
	}
	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = Errorf(CodeInternalError, "marshalling result: %v", err)
		return resp
	}
	resp.Result = data
	return resp
}
