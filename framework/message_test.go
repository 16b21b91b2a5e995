package framework

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageLogRecordAndContextFor(t *testing.T) {
	log := NewMessageLog()
	log.Record("router", "coder", KindTask, "write the note")
	log.Record("coder", "router", KindResult, "note written")
	log.Record("router", "researcher", KindTask, "fetch mail")

	coder := log.ContextFor("coder")
	require.Len(t, coder, 2)
	require.Equal(t, "write the note", coder[0].Content)
	require.Equal(t, KindTask, coder[0].Kind)
	require.Equal(t, "note written", coder[1].Content)

	researcher := log.ContextFor("researcher")
	require.Len(t, researcher, 1)
	require.Equal(t, "router", researcher[0].From)

	require.Empty(t, log.ContextFor("reviewer"))
	require.Equal(t, 3, log.Len())
}

func TestMessageLogAllReturnsSnapshot(t *testing.T) {
	log := NewMessageLog()
	log.Record("a", "b", KindQuery, "first")
	log.Record("b", "a", KindResult, "second")

	all := log.All()
	require.Len(t, all, 2)
	require.Equal(t, "first", all[0].Content)
	require.Equal(t, "second", all[1].Content)
	require.False(t, all[0].Timestamp.After(all[1].Timestamp))
	require.NotEmpty(t, all[0].ID)
	require.NotEqual(t, all[0].ID, all[1].ID)

	// Mutating the snapshot must not touch the log.
	all[0].Content = "mutated"
	require.Equal(t, "first", log.All()[0].Content)
}

func TestMessageLogClear(t *testing.T) {
	log := NewMessageLog()
	log.Record("router", "coder", KindTask, "anything")
	log.Clear()
	require.Zero(t, log.Len())
	require.Empty(t, log.ContextFor("coder"))
	require.Empty(t, log.All())
}
