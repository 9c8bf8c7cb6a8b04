package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/testutil"
)

func TestAudioUpload(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	t.Run("successful upload", func(t *testing.T) {
		resp := ts.UploadAudio(t, token, "session.wav", "audio/wav", []byte("fake wav bytes"))
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		var file domain.AudioFile
		testutil.AssertJSONResponse(t, resp, &file)
		assert.Equal(t, "session.wav", file.OriginalName)
		assert.Equal(t, "audio/wav", file.MimeType)
		assert.Equal(t, int64(len("fake wav bytes")), file.FileSize)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		resp := ts.UploadAudio(t, token, "notes.txt", "text/plain", []byte("hello"))
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Unsupported audio type")
	})

	t.Run("payload above the limit", func(t *testing.T) {
		huge := bytes.Repeat([]byte("a"), int(ts.Config.MaxUploadBytes())+1)
		resp := ts.UploadAudio(t, token, "huge.wav", "audio/wav", huge)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := ts.UploadAudio(t, "invalid-token", "session.wav", "audio/wav", []byte("x"))
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAudioList(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := ts.UploadAudio(t, token, "mine.wav", "audio/wav", []byte("bytes"))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp := ts.DoRequest(t, http.MethodGet, "/audio/", token, nil)
	defer listResp.Body.Close()
	testutil.AssertStatusCode(t, listResp, http.StatusOK)

	var files []domain.AudioFile
	testutil.AssertJSONResponse(t, listResp, &files)
	require.Len(t, files, 1)
	assert.Equal(t, "mine.wav", files[0].OriginalName)

	// Another user sees an empty list, not someone else's files.
	otherResp := ts.DoRequest(t, http.MethodGet, "/audio/", otherToken, nil)
	defer otherResp.Body.Close()
	var otherFiles []domain.AudioFile
	testutil.AssertJSONResponse(t, otherResp, &otherFiles)
	assert.Empty(t, otherFiles)
}

func TestAudioStream(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	content := []byte("streamable audio content")
	resp := ts.UploadAudio(t, token, "stream.wav", "audio/wav", content)
	defer resp.Body.Close()
	var file domain.AudioFile
	testutil.AssertJSONResponse(t, resp, &file)

	streamResp := ts.DoRequest(t, http.MethodGet, "/audio/"+file.ID.String()+"/stream", token, nil)
	defer streamResp.Body.Close()

	testutil.AssertStatusCode(t, streamResp, http.StatusOK)
	assert.Equal(t, "audio/wav", streamResp.Header.Get("Content-Type"))
	body, err := io.ReadAll(streamResp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestAudioDelete(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := ts.UploadAudio(t, token, "doomed.wav", "audio/wav", []byte("bytes"))
	defer resp.Body.Close()
	var file domain.AudioFile
	testutil.AssertJSONResponse(t, resp, &file)

	// Other users get not-found, never a hint the file exists.
	foreign := ts.DoRequest(t, http.MethodDelete, "/audio/"+file.ID.String(), otherToken, nil)
	defer foreign.Body.Close()
	testutil.AssertStatusCode(t, foreign, http.StatusNotFound)

	del := ts.DoRequest(t, http.MethodDelete, "/audio/"+file.ID.String(), token, nil)
	defer del.Body.Close()
	testutil.AssertStatusCode(t, del, http.StatusOK)

	gone := ts.DoRequest(t, http.MethodGet, "/audio/"+file.ID.String()+"/stream", token, nil)
	defer gone.Body.Close()
	testutil.AssertStatusCode(t, gone, http.StatusNotFound)
}
