package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lacsverts/internal/api/apitest"
	"lacsverts/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, backendURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(backendURL, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_ValidatesURL(t *testing.T) {
	_, err := New("localhost:8001")
	assert.Error(t, err)

	c, err := New("https://lacs.example.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://lacs.example.org/api", c.BaseURL())
}

func TestClient_Lakes(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.SetLakes(apitest.SampleLakes()...)
	c := newTestClient(t, backend.URL())

	lakes, err := c.Lakes(context.Background())
	require.NoError(t, err)
	require.Len(t, lakes, 3)

	got := []types.LakeStatus{lakes[0].Status, lakes[1].Status, lakes[2].Status}
	want := []types.LakeStatus{types.StatusClean, types.StatusToWatch, types.StatusPolluted}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].SessionID, "lakes are read anonymously")
}

func TestClient_ReportsRequiresSession(t *testing.T) {
	backend := apitest.NewBackend(t)
	c := newTestClient(t, backend.URL())

	_, err := c.Reports(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = c.CreateReport(context.Background(), "  ", types.NewReport{LakeID: "l1", Description: "x"})
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Empty(t, backend.Requests(), "nothing is sent without a session")
}

func TestClient_CreateReport(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddSession("tok", types.Profile{ID: "u1", Name: "Awa"})
	c := newTestClient(t, backend.URL())

	created, err := c.CreateReport(context.Background(), "tok", types.NewReport{
		LakeID:      "kossou",
		Description: "Poissons morts",
		ImageBase64: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "kossou", created.LakeID)
	assert.Equal(t, "Awa", created.UserName)
	assert.Equal(t, types.ReportPending, created.Status)

	assert.Equal(t, 1, backend.Count(http.MethodPost, "/api/reports"))
	reqs := backend.Requests()
	assert.Equal(t, "tok", reqs[0].SessionID)
	assert.JSONEq(t,
		`{"lake_id":"kossou","description":"Poissons morts","image_base64":"data:image/png;base64,AAAA"}`,
		string(reqs[0].Body))

	reports, err := c.Reports(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, created.ID, reports[0].ID)
}

func TestClient_Profile(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddSession("xyz", types.Profile{ID: "u1", Email: "awa@example.org", Name: "Awa"})
	c := newTestClient(t, backend.URL())

	profile, err := c.Profile(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, "awa@example.org", profile.Email)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/auth/profile", reqs[0].Path)
	assert.Equal(t, "xyz", reqs[0].SessionID)
}

func TestClient_UnauthorizedMatchesSentinel(t *testing.T) {
	backend := apitest.NewBackend(t)
	c := newTestClient(t, backend.URL())

	_, err := c.Profile(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid session", apiErr.Detail)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestClient_ServerErrorDetail(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.FailWith(http.MethodGet, "/api/awareness", http.StatusInternalServerError)
	c := newTestClient(t, backend.URL())

	_, err := c.Awareness(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, "injected failure", apiErr.Detail)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Lake not found"}`, "Lake not found"},
		{"list detail", `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"plain text", "Bad Gateway\n", "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseError(400, []byte(tt.body), "").Detail)
		})
	}
}

func TestClient_SendsRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"message":"Lacs Verts API"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithUserAgent("lacsverts-test"))
	msg, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lacs Verts API", msg)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "lacsverts-test", got.Get("User-Agent"))
	assert.Len(t, got.Get(HeaderRequestID), 36)
	assert.Empty(t, got.Get(HeaderSessionID))
}

func TestClient_ReplaysAffinityCookie(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("lb_affinity"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
			http.SetCookie(w, &http.Cookie{Name: "lb_affinity", Value: "node-2", Path: "/"})
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for i := 0; i < 2; i++ {
		_, err := c.Lakes(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"", "node-2"}, seen)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Lakes(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CancelledContext(t *testing.T) {
	backend := apitest.NewBackend(t)
	c := newTestClient(t, backend.URL())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lakes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadReportsBoard(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.SetLakes(apitest.SampleLakes()...)
	backend.AddSession("tok", types.Profile{ID: "u1", Name: "Awa"})
	c := newTestClient(t, backend.URL())

	_, err := c.CreateReport(context.Background(), "tok", types.NewReport{LakeID: "buyo", Description: "odeur"})
	require.NoError(t, err)

	board, err := c.LoadReportsBoard(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, board.Reports, 1)
	assert.Len(t, board.Lakes, 3)
}

func TestLoadReportsBoard_PartialFailure(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.SetLakes(apitest.SampleLakes()...)
	c := newTestClient(t, backend.URL())

	board, err := c.LoadReportsBoard(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, board.Reports)
	assert.Len(t, board.Lakes, 3, "lakes still load when reports fail")
}

func TestClient_LakeAndLakeReports(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.SetLakes(apitest.SampleLakes()...)
	backend.AddSession("tok", types.Profile{ID: "u1"})
	c := newTestClient(t, backend.URL())

	lake, err := c.Lake(context.Background(), "buyo")
	require.NoError(t, err)
	assert.Equal(t, "Lac Buyo", lake.Name)

	_, err = c.Lake(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, err = c.CreateReport(context.Background(), "tok", types.NewReport{LakeID: "buyo", Description: "Mousse"})
	require.NoError(t, err)

	reports, err := c.LakeReports(context.Background(), "buyo")
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	reports, err = c.LakeReports(context.Background(), "kossou")
	require.NoError(t, err)
	assert.Empty(t, reports)
}
