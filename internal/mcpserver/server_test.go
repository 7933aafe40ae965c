package mcpserver

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite-io/easel/internal/agent"
	"github.com/mwhite-io/easel/internal/doc"
)

func testServer(t *testing.T) (*Server, *doc.Replica) {
	t.Helper()
	rep := doc.NewReplicaWithSite("mcp-test")
	n := 0
	srv := New(rep, WithRunnerFactory(func() (*agent.Runner, error) {
		return agent.New(rep, agent.WithIDFunc(func() string {
			n++
			return fmt.Sprintf("mcp-%d", n)
		}))
	}))
	return srv, rep
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestDispatch_SessionLifecycle(t *testing.T) {
	srv, rep := testServer(t)

	res, err := srv.dispatch("create_object", map[string]any{
		"type": "sticky", "text": "hello",
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var callRes agent.Result
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &callRes))
	assert.True(t, callRes.OK)
	assert.Equal(t, 0, rep.Len(), "nothing committed yet")

	res, err = srv.applyToDoc()
	require.NoError(t, err)
	require.False(t, res.IsError)

	var applied agent.ApplyResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &applied))
	require.Len(t, applied.CreatedIDs, 1)
	assert.Equal(t, 1, rep.Len(), "commit reached the live document")

	// The session ended with the apply.
	res, err = srv.applyToDoc()
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDispatch_DiscardLeavesBoardUntouched(t *testing.T) {
	srv, rep := testServer(t)

	_, err := srv.dispatch("create_object", map[string]any{"type": "frame"})
	require.NoError(t, err)

	_, err = srv.discardSession()
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Len())

	// A new session starts clean.
	res, err := srv.dispatch("get_board_state", nil)
	require.NoError(t, err)
	var callRes struct {
		Data agent.BoardState `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &callRes))
	assert.Equal(t, 0, callRes.Data.Count)
}

func TestDispatch_RecoverableFailureKeepsSession(t *testing.T) {
	srv, _ := testServer(t)

	res, err := srv.dispatch("update_object", map[string]any{"id": "ghost", "text": "x"})
	require.NoError(t, err)
	require.False(t, res.IsError, "a structured miss is a text result, not a protocol error")

	var callRes agent.Result
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &callRes))
	assert.False(t, callRes.OK)
	assert.Equal(t, agent.CodeNotFound, callRes.Code)
}

func TestToolRegistration(t *testing.T) {
	srv, _ := testServer(t)
	require.NotNil(t, srv.MCPServer())

	// Every registry tool plus the two session tools must be served.
	names := make(map[string]bool)
	for _, def := range agent.Tools() {
		names[def.Name] = true
	}
	assert.True(t, names["create_object"])
	assert.True(t, names["get_board_state"])
	assert.True(t, names["batch_create"])
}
