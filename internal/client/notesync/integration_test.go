package notesync_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vova4o/gonotes/internal/client/handlers"
	"github.com/vova4o/gonotes/internal/client/models"
	"github.com/vova4o/gonotes/internal/client/notesync"
	"github.com/vova4o/gonotes/internal/client/service"
	"github.com/vova4o/gonotes/internal/client/storage"
	"github.com/vova4o/gonotes/package/logger"
)

type stack struct {
	client *handlers.HTTPClient
	serv   *service.Service
	sync   *notesync.Synchronizer
}

func newStack(t *testing.T, handler http.Handler) *stack {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewLogger("error")
	stor, err := storage.NewStorage(filepath.Join(t.TempDir(), "notes.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { stor.Close() })

	serv := service.NewService(stor, log)
	client, err := handlers.NewHTTPClient(context.Background(), srv.URL, 5*time.Second, log, serv)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return &stack{client: client, serv: serv, sync: notesync.New(client, log)}
}

func TestLoginThenRefresh(t *testing.T) {
	var authHeader atomic.Value
	authHeader.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "u@x.io", r.PostForm.Get("username"))
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T","token_type":"bearer"}`))
	})
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":7,"title":"A","content":"B","is_favorite":true}]`))
	})

	st := newStack(t, mux)
	ctx := context.Background()

	assert.False(t, st.client.IsLoggedIn(ctx))

	resp, err := st.client.Login(ctx, models.RegisterAndLogin{Username: "u@x.io", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "T", resp.AccessToken)

	assert.True(t, st.client.IsLoggedIn(ctx))
	token, err := st.serv.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.Equal(t, "u@x.io", st.client.Username(ctx))

	require.NoError(t, st.sync.LoadIfLoggedIn(ctx, st.client))
	assert.Equal(t, "Bearer T", authHeader.Load())

	notes := st.sync.FilteredView()
	require.Len(t, notes, 1)
	assert.Equal(t, "7", notes[0].ID.String())
	assert.Equal(t, "A", notes[0].Title)
	assert.Equal(t, "B", notes[0].Content)
	assert.True(t, notes[0].IsPinned)
	assert.Equal(t, models.ColorBlue, notes[0].Color)
}

func TestAddFallsBackOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
	})

	st := newStack(t, mux)

	note := models.NewNote("Title", "Body", models.ColorDefault)
	res := st.sync.Add(context.Background(), note)

	assert.Equal(t, notesync.AppliedLocalFallback, res.AppliedTo)
	assert.Error(t, res.Err)

	state := st.sync.State()
	require.Len(t, state.Notes, 1)
	assert.Equal(t, note.ID, state.Notes[0].ID)
	assert.False(t, state.Notes[0].ID.IsRemote())
	assert.Equal(t, "Title", state.Notes[0].Title)
	assert.Equal(t, "Body", state.Notes[0].Content)
	assert.Equal(t, "Failed to create note: Internal Server Error", state.Error)
}

func TestAddUsesServerCopy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		var in models.RemoteNote
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Nil(t, in.ID)

		id := int64(11)
		in.ID = &id
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	})

	st := newStack(t, mux)
	res := st.sync.Add(context.Background(), models.NewNote("x", "y", models.ColorGreen))

	require.Equal(t, notesync.AppliedRemote, res.AppliedTo)
	state := st.sync.State()
	require.Len(t, state.Notes, 1)
	assert.Equal(t, "11", state.Notes[0].ID.String())
	assert.Equal(t, models.ColorGreen, state.Notes[0].Color)
	assert.Empty(t, state.Error)
}

func TestDeleteRemovesEvenOnServerError(t *testing.T) {
	var deleteCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":42,"title":"gone soon","content":""},{"id":43,"title":"stays","content":""}]`))
	})
	mux.HandleFunc("/notes/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleteCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	st := newStack(t, mux)
	ctx := context.Background()
	require.NoError(t, st.sync.Refresh(ctx))

	res := st.sync.Delete(ctx, "42")
	assert.Equal(t, notesync.AppliedLocalFallback, res.AppliedTo)
	assert.EqualValues(t, 1, deleteCalls.Load())

	_, found := st.sync.Get("42")
	assert.False(t, found)
	assert.Len(t, st.sync.State().Notes, 1)
	assert.NotEmpty(t, st.sync.State().Error)
}

func TestLocalNoteNeverReachesServerOnUpdate(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	st := newStack(t, mux)
	ctx := context.Background()

	note := models.NewNote("draft", "", models.ColorDefault)
	st.sync.Add(ctx, note)
	require.EqualValues(t, 1, calls.Load())

	note.Title = "edited draft"
	res := st.sync.Update(ctx, note)
	assert.Equal(t, notesync.AppliedLocalFallback, res.AppliedTo)
	assert.ErrorIs(t, res.Err, handlers.ErrNotPersisted)

	got, ok := st.sync.Get(note.ID.String())
	require.True(t, ok)
	assert.Equal(t, "edited draft", got.Title)

	st.sync.Delete(ctx, note.ID.String())
	assert.Empty(t, st.sync.State().Notes)
	assert.EqualValues(t, 1, calls.Load())
}

func TestLogoutClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"R","token_type":"bearer"}`))
	})
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"mine","content":""}]`))
	})

	st := newStack(t, mux)
	ctx := context.Background()

	_, err := st.client.Register(ctx, models.RegisterAndLogin{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, st.sync.Refresh(ctx))
	require.Len(t, st.sync.State().Notes, 1)

	require.NoError(t, st.client.Logout(ctx))
	st.sync.Clear()

	assert.False(t, st.client.IsLoggedIn(ctx))
	assert.Empty(t, st.client.Username(ctx))
	assert.Empty(t, st.sync.State().Notes)
}

func TestRefreshAcceptsQuotedScalars(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/notes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"7","title":"A","content":"B","is_favorite":"true"}]`))
	})

	st := newStack(t, mux)
	require.NoError(t, st.sync.Refresh(context.Background()))

	notes := st.sync.State().Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "7", notes[0].ID.String())
	assert.True(t, notes[0].ID.IsRemote())
	assert.True(t, notes[0].IsPinned)
	assert.Equal(t, models.ColorBlue, notes[0].Color)
	assert.Empty(t, st.sync.State().Error)
}
