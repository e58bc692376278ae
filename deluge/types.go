package deluge

import (
	"encoding/json"
	"fmt"
)

// rpcRequest is the body posted to the Web UI JSON endpoint
type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

// rpcResponse is the envelope returned for every call
type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is the error object Deluge returns for a failed call
type RPCError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Error implements the error interface
func (e *RPCError) Error() string {
	return fmt.Sprintf("deluge RPC error %d: %s", e.Code, e.Message)
}

// truthy reports whether the result is the JSON literal true.
func (r *rpcResponse) truthy() bool {
	var ok bool
	if err := json.Unmarshal(r.Result, &ok); err != nil {
		return false
	}
	return ok
}
