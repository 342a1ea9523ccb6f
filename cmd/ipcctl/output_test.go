package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStructuredWriter_YAMLStream(t *testing.T) {
	var out bytes.Buffer

	status := 3
	sw := newStructuredWriter(&out, formatYAML)
	require.NoError(t, sw.Write(receivedMessage{Connection: "c1", ID: 1, Type: "response", Text: "a"}))
	require.NoError(t, sw.Write(receivedMessage{Connection: "c1", ID: 2, Type: "finish", Status: &status}))
	require.NoError(t, sw.Close())
	require.NoError(t, sw.Close())

	require.Contains(t, out.String(), "\n---\n")

	dec := yaml.NewDecoder(&out)

	var got []receivedMessage

	for {
		var rm receivedMessage
		if err := dec.Decode(&rm); err != nil {
			require.ErrorIs(t, err, io.EOF)

			break
		}

		got = append(got, rm)
	}

	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Text)
	require.Equal(t, "finish", got[1].Type)
	require.Equal(t, 3, *got[1].Status)
}

func TestStructuredWriter_JSONLines(t *testing.T) {
	var out bytes.Buffer

	sw := newStructuredWriter(&out, formatJSON)
	require.NoError(t, sw.Write(receivedMessage{Connection: "c1", Type: "response", Text: "a"}))
	require.NoError(t, sw.Write(receivedMessage{Connection: "c1", Type: "response", Text: "b"}))
	require.NoError(t, sw.Close())

	dec := json.NewDecoder(&out)

	var first, second receivedMessage
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	require.Equal(t, "a", first.Text)
	require.Equal(t, "b", second.Text)
}

func TestStructuredWriter_TextRejected(t *testing.T) {
	sw := newStructuredWriter(io.Discard, formatText)
	require.Error(t, sw.Write(receivedMessage{}))
}
