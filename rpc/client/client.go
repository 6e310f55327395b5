// Package client is a minimal JSON-RPC 2.0 http client used by the
// admin command line tools to call the running node.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crosslock/CrossChain-Escrow/log"
)

var httpCtx = context.Background()

// Request is a JSON-RPC request to send.
type Request struct {
	Method  string
	Params  interface{}
	ID      int
	Timeout int // seconds
}

// RequestBody is the wire form of a request.
type RequestBody struct {
	Version string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type jsonError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (err *jsonError) Error() string {
	return fmt.Sprintf("json-rpc error %d, %s", err.Code, err.Message)
}

type jsonrpcResponse struct {
	Error  *jsonError      `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// RPCPost json-rpc post with a default timeout of 60 seconds.
func RPCPost(result interface{}, url, method string, params ...interface{}) error {
	return RPCPostWithTimeout(60, result, url, method, params...)
}

// RPCPostWithTimeout json-rpc post with the given timeout in seconds.
func RPCPostWithTimeout(timeout int, result interface{}, url, method string, params ...interface{}) error {
	req := &Request{Method: method, Params: params, ID: 1, Timeout: timeout}
	return RPCPostRequest(url, req, result)
}

// RPCPostWithTimeoutAndID json-rpc post with the given timeout and request id.
func RPCPostWithTimeoutAndID(result interface{}, timeout, id int, url, method string, params ...interface{}) error {
	req := &Request{Method: method, Params: params, ID: id, Timeout: timeout}
	return RPCPostRequest(url, req, result)
}

// RPCPostRequest rpc post request
func RPCPostRequest(url string, req *Request, result interface{}) error {
	return RPCPostRequestWithContext(httpCtx, url, req, result)
}

// RPCPostRequestWithContext rpc post request with context
func RPCPostRequestWithContext(ctx context.Context, url string, req *Request, result interface{}) error {
	reqBody := &RequestBody{
		Version: "2.0",
		Method:  req.Method,
		Params:  req.Params,
		ID:      req.ID,
	}
	resp, err := HTTPPostWithContext(ctx, url, reqBody, req.Timeout)
	if err != nil {
		log.Trace("post rpc error", "url", url, "request", req, "err", err)
		return err
	}
	err = getResultFromJSONResponse(result, resp)
	if err != nil {
		log.Trace("post rpc error", "url", url, "request", req, "err", err)
	}
	return err
}

// HTTPPostWithContext http post with context
func HTTPPostWithContext(ctx context.Context, url string, body interface{}, timeout int) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body error: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

func getResultFromJSONResponse(result interface{}, resp *http.Response) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	const maxReadContentLength int64 = 1024 * 1024 * 10 // 10M
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadContentLength))
	if err != nil {
		return fmt.Errorf("read body error: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("wrong response status %v. message: %v", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return fmt.Errorf("empty response body")
	}

	var jsonResp jsonrpcResponse
	err = json.Unmarshal(body, &jsonResp)
	if err != nil {
		return fmt.Errorf("unmarshal body error, body is \"%v\" err=\"%w\"", string(body), err)
	}
	if jsonResp.Error != nil {
		return jsonResp.Error
	}
	err = json.Unmarshal(jsonResp.Result, &result)
	if err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}
