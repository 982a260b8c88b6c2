package messages

import (
	"encoding/json"
	"testing"

	gametypes "github.com/hallorn/broadside/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeMessage(t *testing.T) {
	tests := []struct {
		name    string
		message *Message
	}{
		{
			name: "attack message",
			message: &Message{
				ClientID: 7,
				Type:     MessageTypeClientAttack,
				Payload:  mustMarshal(t, &ClientAttack{Attack: gametypes.AttackInput{Origin: gametypes.CellPosition{X: 3, Y: 5}}}),
			},
		},
		{
			name: "join message with no payload fields set",
			message: &Message{
				ClientID: 0,
				Type:     MessageTypeClientJoinMatch,
				Payload:  mustMarshal(t, &ClientJoinMatch{Username: "alice", MatchID: "match-1"}),
			},
		},
		{
			name: "empty payload",
			message: &Message{
				ClientID: 1,
				Type:     MessageTypeClientPing,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SerializeMessage(tt.message)
			require.NoError(t, err)

			got, err := DeserializeMessage(b)
			require.NoError(t, err)

			assert.Equal(t, tt.message.ClientID, got.ClientID)
			assert.Equal(t, tt.message.Type, got.Type)
			assert.JSONEq(t, string(mustNonEmpty(tt.message.Payload)), string(mustNonEmpty(got.Payload)))
		})
	}
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func mustNonEmpty(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 {
		return json.RawMessage(`null`)
	}
	return payload
}
