package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vmbridge/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testRegistry() *tools.Registry {
	reg := tools.NewRegistry(nil)
	reg.MustRegister(&tools.Tool{
		Name:        "listVMs",
		Description: "List all virtual machines",
		Schema:      tools.Schema{Required: []string{}},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			return tools.Text("No virtual machines found.")
		},
	})
	reg.MustRegister(&tools.Tool{
		Name:        "startVM",
		Description: "Start a virtual machine",
		Schema: tools.Schema{
			Required:   []string{"vmId"},
			Properties: map[string]tools.Property{"vmId": {Type: "string"}},
		},
		Handler: func(ctx context.Context, args map[string]any) *tools.Result {
			return tools.Errorf("controller unavailable")
		},
	})
	return reg
}

// runScript feeds newline-delimited requests to a server and returns the
// responses indexed by request id.
func runScript(t *testing.T, script string) map[string]response {
	t.Helper()

	var out bytes.Buffer
	srv := NewServer("vmbridge", "1.0.0", testRegistry(), strings.NewReader(script), &out, nil)
	require.NoError(t, srv.Serve(context.Background()))

	responses := make(map[string]response)
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		responses[string(resp.ID)] = resp
	}
	return responses
}

func TestServeInitializeAndPing(t *testing.T) {
	script := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}
{"jsonrpc":"2.0","method":"notifications/initialized"}
{"jsonrpc":"2.0","id":2,"method":"ping"}
`
	responses := runScript(t, script)
	require.Len(t, responses, 2, "the notification must not be answered")

	init := responses["1"]
	require.Nil(t, init.Error)
	raw, err := json.Marshal(init.Result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"vmbridge"`)
	assert.Contains(t, string(raw), protocolVersion)

	require.Nil(t, responses["2"].Error)
}

func TestServeToolsList(t *testing.T) {
	responses := runScript(t, `{"jsonrpc":"2.0","id":7,"method":"tools/list"}`+"\n")

	resp := responses["7"]
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var result struct {
		Tools []toolDescriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Tools, 2)
	// Registration order is the discovery order.
	assert.Equal(t, "listVMs", result.Tools[0].Name)
	assert.Equal(t, "startVM", result.Tools[1].Name)
	assert.Equal(t, "object", result.Tools[0].InputSchema.Type)
}

func TestServeToolsCall(t *testing.T) {
	script := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"listVMs","arguments":{}}}` + "\n"
	responses := runScript(t, script)

	resp := responses["3"]
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var res tools.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "No virtual machines found.", res.Content[0].Text)
}

func TestServeToolsCallHandlerFailure(t *testing.T) {
	script := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"startVM","arguments":{"vmId":"box"}}}` + "\n"
	responses := runScript(t, script)

	resp := responses["4"]
	require.Nil(t, resp.Error, "handler failures are content payloads, not protocol errors")

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var res tools.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "controller unavailable")
}

func TestServeUnknownToolIsProtocolError(t *testing.T) {
	script := `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nonExistentTool","arguments":{}}}` + "\n"
	responses := runScript(t, script)

	resp := responses["5"]
	require.NotNil(t, resp.Error, "unknown tool must be a protocol-level rejection")
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unknown tool")
	assert.Nil(t, resp.Result)
}

func TestServeUnknownMethod(t *testing.T) {
	responses := runScript(t, `{"jsonrpc":"2.0","id":6,"method":"resources/list"}`+"\n")

	resp := responses["6"]
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestServeMalformedLine(t *testing.T) {
	script := "this is not json\n" +
		`{"jsonrpc":"2.0","id":8,"method":"ping"}` + "\n"
	responses := runScript(t, script)

	// The malformed line gets a parse error with a null id; the ping
	// afterwards still succeeds, so one bad line never kills the loop.
	require.Contains(t, responses, "null")
	assert.Equal(t, codeParseError, responses["null"].Error.Code)
	require.Contains(t, responses, "8")
	assert.Nil(t, responses["8"].Error)
}

func TestServeEOFReturnsCleanly(t *testing.T) {
	var out bytes.Buffer
	srv := NewServer("vmbridge", "1.0.0", testRegistry(), strings.NewReader(""), &out, nil)
	require.NoError(t, srv.Serve(context.Background()))
	assert.Empty(t, out.String())
}
