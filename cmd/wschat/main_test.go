package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-dm/internal/proto"
)

func TestSocketURL(t *testing.T) {
	got, err := socketURL("https://chat.example.com/", "abc")
	require.NoError(t, err)
	require.Equal(t, "wss://chat.example.com/ws?token=abc", got)

	got, err = socketURL("http://localhost:8080", "t")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/ws?token=t", got)
}

func TestParseLine(t *testing.T) {
	frame, err := parseLine("hello there", 1, 2)
	require.NoError(t, err)
	require.Equal(t, proto.InboundTypeCreate, frame.Type)

	var create proto.CreatePayload
	require.NoError(t, json.Unmarshal(frame.Payload, &create))
	require.Equal(t, proto.CreatePayload{Text: "hello there", SenderID: 1, ReceiverID: 2}, create)

	frame, err = parseLine("/read", 1, 2)
	require.NoError(t, err)
	var read proto.ReadPayload
	require.NoError(t, json.Unmarshal(frame.Payload, &read))
	require.Equal(t, proto.ReadPayload{SenderID: 2, ReceiverID: 1}, read)

	frame, err = parseLine("/edit 7 new words", 1, 2)
	require.NoError(t, err)
	var upd proto.UpdatePayload
	require.NoError(t, json.Unmarshal(frame.Payload, &upd))
	require.Equal(t, proto.UpdatePayload{ID: 7, NewText: "new words"}, upd)

	_, err = parseLine("/del x", 1, 2)
	require.Error(t, err)
	_, err = parseLine("/edit 7", 1, 2)
	require.Error(t, err)
}
