package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunPlay_ActionEndsMatch(t *testing.T) {
	// Dos Enter por jugador para ver y ocultar el rol.
	input := "\n\n\n\n" +
		"carol trust\n" +
		"bob maybe\n" +
		"bob distrust\n" +
		"alice trust\n"
	var out bytes.Buffer

	err := runPlay(context.Background(), strings.NewReader(input), &out, zap.NewNop(), "alice", "bob", time.Minute, 7)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "A game of DISTRUST has started between alice and bob!")
	assert.Contains(t, text, "Your role:")
	assert.Contains(t, text, "carol is not part of this game.")
	assert.Contains(t, text, "say trust or distrust")
	assert.Contains(t, text, "=== Game Result ===")
	assert.Contains(t, text, "Action taken: bob pressed Distrust.")
}

func TestRunPlay_TimesOut(t *testing.T) {
	var out bytes.Buffer

	err := runPlay(context.Background(), strings.NewReader("\n\n\n\n"), &out, zap.NewNop(), "alice", "bob", 30*time.Millisecond, 3)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "=== Game Result ===")
	assert.Contains(t, text, "Time is up.")
	assert.NotContains(t, text, "Action taken")
}

func TestRunPlay_SelfMatchRejected(t *testing.T) {
	var out bytes.Buffer
	err := runPlay(context.Background(), strings.NewReader(""), &out, zap.NewNop(), "alice", "alice", time.Minute, 1)
	assert.Error(t, err)
}
