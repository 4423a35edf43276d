package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWasmExecute_JSON(t *testing.T) {
	msg, err := NewWasmExecute("paloma1router", map[string]interface{}{
		"re_withdraw": map[string]interface{}{"nonce": 7},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "wasm", msg.Kind())

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	// msg 为 base64 编码的二进制 JSON，funds 为空数组而非 null
	assert.JSONEq(t, `{"wasm":{"execute":{"contract_addr":"paloma1router","msg":"eyJyZV93aXRoZHJhdyI6eyJub25jZSI6N319","funds":[]}}}`, string(data))
}

func TestNewExecuteJob(t *testing.T) {
	msg := NewExecuteJob("job-1", []byte{0xde, 0xad})
	assert.Equal(t, "scheduler", msg.Kind())

	job, ok := msg.ExecuteJob()
	require.True(t, ok)
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, []byte{0xde, 0xad}, job.Payload)

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"custom":{"scheduler_msg":{"execute_job":{"job_id":"job-1","payload":"3q0="}}}}`, string(data))

	_, ok = NewSkyway(SkywayMsg{CancelTx: &CancelTx{TransactionID: 1}}).ExecuteJob()
	assert.False(t, ok)
}

func TestResponse(t *testing.T) {
	r := NewResponse("send_token").
		AddMessage(NewExecuteJob("j", nil)).
		AddAttribute("chain_id", "bnb")

	assert.Equal(t, "send_token", r.Action())
	assert.Len(t, r.Messages, 1)
	assert.Equal(t, []Attribute{{"action", "send_token"}, {"chain_id", "bnb"}}, r.Attributes)
	assert.Equal(t, "", Response{}.Action())
}

func TestState_Clone(t *testing.T) {
	s := State{Owners: []Principal{"a", "b"}, RetryDelay: 30}
	c := s.Clone()
	c.Owners[0] = "z"
	assert.Equal(t, Principal("a"), s.Owners[0])
}
