package bedrockclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/bedrockclient"
	"pdfchat/internal/bedrockclient/bedrocktest"
)

func TestInvokeJSON(t *testing.T) {
	fake := &bedrocktest.Fake{Response: map[string]any{"generation": "hi"}}
	var out struct {
		Generation string `json:"generation"`
	}
	err := bedrockclient.InvokeJSON(context.Background(), fake, "meta.llama2-70b-chat-v1", map[string]any{"prompt": "p"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Generation)
	assert.Equal(t, []string{"meta.llama2-70b-chat-v1"}, fake.ModelIDs)
	assert.Equal(t, "p", fake.Bodies[0]["prompt"])
}

func TestInvokeJSONWrapsError(t *testing.T) {
	boom := errors.New("throttled")
	fake := &bedrocktest.Fake{Err: boom}
	var out struct{}
	err := bedrockclient.InvokeJSON(context.Background(), fake, "m", map[string]any{}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "invoke m")
}
