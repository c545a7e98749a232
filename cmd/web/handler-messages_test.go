package main

import (
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/jigsawroom/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readStream reads the whole event stream at urlPath.
func readStream(t *testing.T, client *e2etest.Client, urlPath string) string {
	t.Helper()
	resp, err := client.Get(t.Context(), urlPath)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// pendingStream returns the stream path of the only pending reply in doc.
func pendingStream(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	pending := doc.Find("[sse-connect]")
	require.Equal(t, 1, pending.Length())
	path, ok := pending.Attr("sse-connect")
	require.True(t, ok)
	return path
}

func TestSendMessage_streamsReply(t *testing.T) {
	ctx := t.Context()
	f := &fakeCompletions{chunks: []string{"Tente ", "ROT3."}}
	server := startOpenAIServer(t, f)
	client := server.Client()

	doc, err := client.SubmitForm(ctx, "/", "/messages", url.Values{
		"target":  {"gustavo"},
		"message": {"KHOOR"},
	})
	require.NoError(t, err)
	assert.Contains(t, doc.Find("article.message.user").Text(), "KHOOR")
	streamPath := pendingStream(t, doc)

	events := readStream(t, client, streamPath)
	assert.Contains(t, events, "event: chunk\ndata: Tente \n\n")
	assert.Contains(t, events, "event: chunk\ndata: ROT3.\n\n")
	assert.Contains(t, events, "event: done\n")
	assert.Contains(t, events, "<p>Tente ROT3.</p>")

	doc, err = client.GetDoc(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("[sse-connect]").Length())
	reply := doc.Find("article.message.assistant")
	require.Equal(t, 1, reply.Length())
	assert.Contains(t, reply.Find("header").Text(), "Gustavo")
	assert.Contains(t, reply.Text(), "Tente ROT3.")

	// A finished reply is sent from the database.
	events = readStream(t, client, streamPath)
	assert.NotContains(t, events, "event: chunk")
	assert.Contains(t, events, "<p>Tente ROT3.</p>")

	requests := f.Requests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Messages, 2)
	assert.Contains(t, requests[0].Messages[0].Content, "You are Gustavo")
	assert.Equal(t, "KHOOR", requests[0].Messages[1].Content)
}

func TestSendMessage_supervisorKnowsSelectedAgents(t *testing.T) {
	ctx := t.Context()
	f := &fakeCompletions{chunks: []string{"Vamos lá."}}
	server := startOpenAIServer(t, f)
	client := server.Client()

	doc, err := client.SubmitForm(ctx, "/", "/agents", url.Values{"agent": {"maya", "unknown"}})
	require.NoError(t, err)
	checked := doc.Find("input[name=agent][checked]")
	require.Equal(t, 1, checked.Length())
	assert.Equal(t, "maya", checked.AttrOr("value", ""))

	doc, err = client.SubmitForm(ctx, "/", "/messages", url.Values{
		"target":  {"supervisor"},
		"message": {"Por onde começamos?"},
	})
	require.NoError(t, err)
	readStream(t, client, pendingStream(t, doc))

	requests := f.Requests()
	require.Len(t, requests, 1)
	last := requests[0].Messages[len(requests[0].Messages)-1]
	assert.Contains(t, last.Content, "Por onde começamos?")
	assert.Contains(t, last.Content, "Available team members: Maya.")
}

func TestSendMessage_unconfiguredTarget(t *testing.T) {
	ctx := t.Context()
	server := startBedrockServer(t, map[string]string{
		"SUPERVISOR_AGENT_ID": "SUPERVISOR",
		"SUPERVISOR_ALIAS_ID": "ALIAS",
	})
	client := server.Client()

	doc, err := client.SubmitForm(ctx, "/", "/messages", url.Values{
		"target":  {"maya"},
		"message": {"Oi"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("[sse-connect]").Length())
	reply := doc.Find("article.message.assistant")
	require.Equal(t, 1, reply.Length())
	assert.Contains(t, reply.Text(), "Error: Missing Agent ID/Alias for target: Maya")
}

func TestSendMessage_invalidForm(t *testing.T) {
	ctx := t.Context()
	server := startOpenAIServer(t, &fakeCompletions{chunks: []string{"ok"}})
	client := server.Client()

	_, err := client.SubmitForm(ctx, "/", "/messages", url.Values{"target": {"gustavo"}, "message": {"  "}})
	require.Error(t, err)
	_, err = client.SubmitForm(ctx, "/", "/messages", url.Values{"target": {"nobody"}, "message": {"Oi"}})
	require.Error(t, err)
}

func TestStreamReply_unknownMessage(t *testing.T) {
	ctx := t.Context()
	server := startOpenAIServer(t, &fakeCompletions{chunks: []string{"ok"}})

	resp, err := server.Client().Get(ctx, "/messages/does-not-exist/stream")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendMessage_htmxRendersPendingReply(t *testing.T) {
	ctx := t.Context()
	server := startOpenAIServer(t, &fakeCompletions{chunks: []string{"Olá!"}})
	client := server.Client()

	resp, err := client.SubmitHxForm(ctx, "/", "/messages", url.Values{
		"target":  {"maya"},
		"message": {"Quem mente?"},
	})
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("#message-form").Length(), "only the new messages are rendered")
	assert.Contains(t, doc.Find("article.message.user").Text(), "Quem mente?")
	events := readStream(t, client, pendingStream(t, doc))
	assert.Contains(t, events, "<p>Olá!</p>")
}
