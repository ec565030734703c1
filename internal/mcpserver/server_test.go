package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/stunsim/internal/stun"
)

func connect(t *testing.T, calc *stun.Calculator) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	served := make(chan error, 1)
	go func() {
		served <- New(calc).serve(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer connectCancel()

	session, err := client.Connect(connectCtx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		select {
		case err := <-served:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})
	return session
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestServer_ListsTools(t *testing.T) {
	session := connect(t, newCalculator(t))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_stun", "plan_stun", "quick_stun", "stun_meter", "decay_stun"}, names)
}

func TestServer_AnalyzeOverSession(t *testing.T) {
	calc := newCalculator(t)
	session := connect(t, calc)
	ctx := context.Background()

	args := map[string]any{
		"damage":          5000,
		"target_max_life": 10000,
		"damage_type":     "physical",
		"attack_type":     "melee",
		"target_id":       "boss",
	}
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "analyze_stun", Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)
	first := decode[AnalyzeStunResult](t, res)
	assert.Equal(t, "primed", first.Heavy.Transition)
	assert.False(t, first.Heavy.TriggeredCrushingBlow)

	// Second hit lands on the primed meter and fills it.
	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "analyze_stun", Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)
	second := decode[AnalyzeStunResult](t, res)
	assert.True(t, second.Heavy.TriggeredCrushingBlow)
	assert.True(t, second.Heavy.TriggeredHeavyStun)
	assert.Equal(t, "triggered", second.Heavy.Transition)
	assert.Equal(t, "dormant", second.Heavy.Meter.State)

	snap, ok := calc.HeavyStunMeter("boss")
	require.True(t, ok)
	assert.Equal(t, 1, snap.HeavyStuns)
	assert.Equal(t, 2, snap.Hits)
	assert.Zero(t, snap.BuildupPercentage)
}

func TestServer_BadDataIsToolError(t *testing.T) {
	session := connect(t, newCalculator(t))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "analyze_stun",
		Arguments: map[string]any{
			"damage":          -10,
			"target_max_life": 100,
			"damage_type":     "fire",
			"attack_type":     "spell",
		},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
