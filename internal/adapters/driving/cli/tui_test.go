package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui"
)

func TestTUICmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	var started *tui.App
	orig := runApp
	runApp = func(app *tui.App) error {
		started = app
		return nil
	}
	defer func() {
		runApp = orig
		tuiConversation = ""
		tuiAnswer = false
	}()

	out, err := execute(t, "tui", "--conversation", "c-3", "--answer")

	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, "c-3", started.ConversationID())
	assert.True(t, started.AskView().Input().AnswerMode())
	assert.Contains(t, out, "Conversation c-3")
}

func TestTUICmd_RunError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	orig := runApp
	runApp = func(*tui.App) error { return errors.New("no tty") }
	defer func() { runApp = orig }()

	_, err := execute(t, "tui")

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "tui: "))
}

func TestTUICmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	queryService = nil

	_, err := execute(t, "tui")

	assert.EqualError(t, err, "query service not configured")
}
