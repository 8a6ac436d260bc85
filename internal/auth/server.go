package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"time"

	"lacsverts/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CallbackServer is the local HTTP endpoint the identity provider redirects
// to. Browsers never send the URL fragment to a server, so GET /profile
// serves a page that relays location.hash to GET /profile/complete.
type CallbackServer struct {
	addr     string
	state    string
	server   *http.Server
	listener net.Listener

	idChan  chan string
	errChan chan error
}

// NewCallbackServer prepares a server on addr (host:port; port 0 picks one).
func NewCallbackServer(addr string) *CallbackServer {
	s := &CallbackServer{
		addr:    addr,
		state:   uuid.NewString(),
		idChan:  make(chan string, 1),
		errChan: make(chan error, 1),
	}

	r := mux.NewRouter()
	r.HandleFunc("/profile", s.handleRelay).Methods(http.MethodGet)
	r.HandleFunc("/profile/complete", s.handleComplete).Methods(http.MethodGet)
	s.server = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Start binds the listener and serves in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()
	return nil
}

// CallbackURL is the redirect target given to the identity provider.
func (s *CallbackServer) CallbackURL() string {
	addr := s.addr
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	u := url.URL{Scheme: "http", Host: addr, Path: "/profile"}
	q := u.Query()
	q.Set("state", s.state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Wait blocks until a session id arrives, the flow fails, or ctx is done.
// The server is shut down in every case.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case id := <-s.idChan:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
		return id, nil
	case err := <-s.errChan:
		s.server.Close()
		return "", err
	case <-ctx.Done():
		s.server.Close()
		return "", ctx.Err()
	}
}

// Close stops the server immediately.
func (s *CallbackServer) Close() error {
	return s.server.Close()
}

var relayPage = template.Must(template.New("relay").Parse(`<!DOCTYPE html>
<html>
<head><title>Lacs Verts</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
	<p>Authentification en cours...</p>
	<script>
		var fragment = new URLSearchParams(window.location.hash.slice(1));
		var target = "/profile/complete?state=" + encodeURIComponent({{.State}}) +
			"&session_id=" + encodeURIComponent(fragment.get("session_id") || "");
		window.location.replace(target);
	</script>
</body>
</html>
`))

const successPage = `<!DOCTYPE html>
<html>
<head><title>Lacs Verts</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
	<h1 style="color: #2E7D32;">Connexion réussie</h1>
	<p>Vous pouvez fermer cet onglet et revenir au terminal.</p>
	<script>window.close();</script>
</body>
</html>
`

func (s *CallbackServer) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("state") != s.state {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		logging.Get(logging.CategoryAuth).Warn("callback with unexpected state")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := relayPage.Execute(w, struct{ State string }{s.state}); err != nil {
		logging.AuthError("failed to render relay page", zap.Error(err))
	}
}

func (s *CallbackServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != s.state {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		logging.Get(logging.CategoryAuth).Warn("completion with unexpected state")
		return
	}

	id := q.Get("session_id")
	if id == "" {
		http.Error(w, "No session_id received", http.StatusBadRequest)
		select {
		case s.errChan <- ErrNoSessionID:
		default:
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(successPage))

	select {
	case s.idChan <- id:
	default:
	}
}
