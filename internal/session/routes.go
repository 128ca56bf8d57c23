package session

import "strings"

// Access is the requirement a page places on the session.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Route struct {
	Pattern string
	Access  Access
}

// Routes lists the pages of the admin frontend. ":x" matches one segment.
var Routes = []Route{
	{"/", Public},
	{"/login", Public},
	{"/register", Public},
	{"/contact", Public},
	{"/product/:id", Authenticated},
	{"/admin/products/create", Authenticated},
	{"/sellers", Authenticated},
	{"/sales", Authenticated},
	{"/earnings", AdminOnly},
	{"/admin/users", AdminOnly},
}

// AccessFor returns the requirement of path. Unknown paths under /admin need
// a session; anything else unknown is public.
func AccessFor(path string) Access {
	path = "/" + strings.Trim(path, "/")
	for _, r := range Routes {
		if matches(r.Pattern, path) {
			return r.Access
		}
	}
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		return Authenticated
	}
	return Public
}

// CanVisit reports whether the session may open path; when not, redirect is
// /login for anonymous visitors and / for signed-in non-admins.
func (s *Session) CanVisit(path string) (ok bool, redirect string) {
	switch AccessFor(path) {
	case Authenticated:
		if !s.IsAuthenticated() {
			return false, LoginPath
		}
	case AdminOnly:
		if !s.IsAuthenticated() {
			return false, LoginPath
		}
		if !s.IsAdmin() {
			return false, HomePath
		}
	}
	return true, ""
}

func matches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
