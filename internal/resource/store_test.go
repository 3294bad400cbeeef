package resource

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreListAndGetUseSeparateSlots(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			io.WriteString(w, `[{"id":1,"name":"Ring"},{"id":2,"name":"Chain"}]`)
			return
		}
		io.WriteString(w, `{"id":2,"name":"Chain"}`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	_, err := store.List(ctx, nil)
	require.NoError(t, err)
	_, err = store.Get(ctx, "2")
	require.NoError(t, err)

	state := store.Snapshot()
	assert.True(t, state.Ready())
	assert.Len(t, state.Items, 2)
	require.NotNil(t, state.Item)
	assert.Equal(t, "2", state.Item.ID)
	assert.Equal(t, PhaseSuccess, state.Phase)
}

func TestStoreFailureSetsErrorAndKeepsData(t *testing.T) {
	var fail atomic.Bool
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "DB down"})
			return
		}
		io.WriteString(w, `[{"id":1,"name":"Ring"}]`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	_, err := store.List(ctx, nil)
	require.NoError(t, err)

	fail.Store(true)
	_, err = store.List(ctx, nil)
	require.Error(t, err)

	state := store.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.Ready())
	assert.Equal(t, "DB down", state.Err.Error())
	assert.Equal(t, PhaseFailure, state.Phase)
	assert.Len(t, state.Items, 1)

	// the next call clears the error on entry
	fail.Store(false)
	_, err = store.List(ctx, nil)
	require.NoError(t, err)
	assert.NoError(t, store.Snapshot().Err)
}

func TestStoreRemovePrunesOnlyAfterConfirmation(t *testing.T) {
	var deny atomic.Bool
	deny.Store(true)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			if deny.Load() {
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "not allowed"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			io.WriteString(w, `[{"id":1,"name":"Ring"},{"id":2,"name":"Chain"}]`)
		}
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	_, err := store.List(ctx, nil)
	require.NoError(t, err)

	require.Error(t, store.Remove(ctx, "1"))
	assert.Len(t, store.Snapshot().Items, 2)

	deny.Store(false)
	require.NoError(t, store.Remove(ctx, "1"))

	items := store.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestStoreUpdateTrustsResponse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			io.WriteString(w, `{"id":1,"name":"Gold Ring","price":2}`)
		case http.MethodGet:
			if r.URL.Path == "/1" {
				io.WriteString(w, `{"id":1,"name":"Ring","price":1}`)
				return
			}
			io.WriteString(w, `[{"id":1,"name":"Ring","price":1},{"id":2,"name":"Chain"}]`)
		}
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	_, err := store.List(ctx, nil)
	require.NoError(t, err)
	_, err = store.Get(ctx, "1")
	require.NoError(t, err)

	_, err = store.Update(ctx, "1", widgetInput{Name: "Gold Ring", Price: 2}, nil)
	require.NoError(t, err)

	state := store.Snapshot()
	assert.Equal(t, "Gold Ring", state.Items[0].Name)
	assert.Equal(t, "Chain", state.Items[1].Name)
	assert.Equal(t, "Gold Ring", state.Item.Name)
}

func TestStoreCreateDoesNotSpliceIntoList(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			io.WriteString(w, `{"id":3,"name":"New"}`)
			return
		}
		io.WriteString(w, `[{"id":1,"name":"Ring"}]`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	_, err := store.List(ctx, nil)
	require.NoError(t, err)

	created, err := store.Create(ctx, widgetInput{Name: "New"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", created.ID)
	assert.Len(t, store.Snapshot().Items, 1)
}

func TestStoreBlankIDLeavesStateUntouched(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))

	notified := 0
	store.Subscribe(func(State[widgetView]) { notified++ })

	_, err := store.Get(context.Background(), "")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, KindValidation, KindOf(store.Remove(context.Background(), " ")))

	state := store.Snapshot()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.NoError(t, state.Err)
	assert.Zero(t, notified)
}

func TestStoreDropsStaleListResponse(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slow") != "" {
			close(arrived)
			<-release
			io.WriteString(w, `[{"id":1,"name":"Old"}]`)
			return
		}
		io.WriteString(w, `[{"id":2,"name":"New"}]`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.List(ctx, url.Values{"slow": {"1"}})
	}()

	<-arrived
	_, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.True(t, store.Snapshot().Loading, "slow request is still in flight")

	close(release)
	wg.Wait()

	state := store.Snapshot()
	assert.False(t, state.Loading)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "New", state.Items[0].Name)
}

func TestStoreCanceledCallDoesNotApply(t *testing.T) {
	arrived := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "hang") {
			close(arrived)
			<-r.Context().Done()
			return
		}
		io.WriteString(w, `[{"id":1,"name":"Ring"}]`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))

	_, err := store.List(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := store.List(ctx, url.Values{"hang": {"1"}})
		done <- err
	}()

	<-arrived
	cancel()
	err = <-done
	assert.Equal(t, KindCanceled, KindOf(err))

	state := store.Snapshot()
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Len(t, state.Items, 1)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))

	var phases []Phase
	unsubscribe := store.Subscribe(func(s State[widgetView]) {
		phases = append(phases, s.Phase)
	})

	_, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseLoading, PhaseSuccess}, phases)

	unsubscribe()
	_, err = store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, phases, 2)
}

func TestStoreReportsOverlappingFailureOnceSettled(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			close(arrived)
			<-release
			io.WriteString(w, `[{"id":1,"name":"Ring"}]`)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "DB down"})
	})

	store := NewStore(newWidgetClient(t, srv.URL, EncodingJSON))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.List(ctx, nil)
	}()

	<-arrived
	_, err := store.Get(ctx, "7")
	require.Error(t, err)

	state := store.Snapshot()
	assert.True(t, state.Loading)
	assert.NoError(t, state.Err)
	assert.Equal(t, PhaseLoading, state.Phase)

	close(release)
	wg.Wait()

	state = store.Snapshot()
	assert.False(t, state.Loading)
	require.Error(t, state.Err)
	assert.Equal(t, "DB down", state.Err.Error())
	assert.Equal(t, PhaseFailure, state.Phase)
	assert.Len(t, state.Items, 1)
}
