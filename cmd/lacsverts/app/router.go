package app

import (
	"errors"
	"strings"

	"lacsverts/cmd/lacsverts/ui"
	"lacsverts/internal/session"
)

// ErrUnknownRoute is returned by Resolve for paths outside the table.
var ErrUnknownRoute = errors.New("unknown route")

// Route maps a path to a page.
type Route struct {
	Path  string
	Title string
	// Key is the shortcut that mounts the route.
	Key string
	// NeedsSession hides the route from the nav bar while signed out. The
	// route stays navigable; the page renders its own login prompt.
	NeedsSession bool
	// Hidden routes are never listed in the nav bar.
	Hidden bool

	build func(ui.Deps) ui.Page
}

// Routes is the static route table.
var Routes = []Route{
	{Path: "/", Title: "Accueil", Key: "1", build: func(d ui.Deps) ui.Page { return ui.NewHomePage(d) }},
	{Path: "/lakes", Title: "État des lacs", Key: "2", build: func(d ui.Deps) ui.Page { return ui.NewLakesPage(d) }},
	{Path: "/reports", Title: "Signalements", Key: "3", NeedsSession: true, build: func(d ui.Deps) ui.Page { return ui.NewReportsPage(d) }},
	{Path: "/map", Title: "Carte", Key: "4", build: func(d ui.Deps) ui.Page { return ui.NewMapPage(d) }},
	{Path: "/awareness", Title: "Sensibilisation", Key: "5", build: func(d ui.Deps) ui.Page { return ui.NewAwarenessPage(d) }},
	{Path: "/profile", Title: "Connexion", Key: "L", Hidden: true, build: func(d ui.Deps) ui.Page { return ui.NewProfilePage(d) }},
}

// HomePath is where unknown paths and completed logins land.
const HomePath = "/"

// ProfilePath is the auth callback route.
const ProfilePath = "/profile"

// Resolve looks up path. Trailing slashes and a fragment are ignored.
func Resolve(path string) (Route, error) {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	for _, r := range Routes {
		if r.Path == path {
			return r, nil
		}
	}
	return Routes[0], ErrUnknownRoute
}

// ByKey returns the route bound to a shortcut.
func ByKey(key string) (Route, bool) {
	for _, r := range Routes {
		if r.Key == key {
			return r, true
		}
	}
	return Route{}, false
}

// NavRoutes returns the routes listed in the nav bar for sess.
func NavRoutes(sess session.Session) []Route {
	out := make([]Route, 0, len(Routes))
	for _, r := range Routes {
		if r.Hidden || (r.NeedsSession && !sess.Authenticated()) {
			continue
		}
		out = append(out, r)
	}
	return out
}
