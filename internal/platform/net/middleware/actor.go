package middleware

import (
	"net/http"

	pnet "agora/internal/platform/net"
)

// ActorPort resolves the calling actor from a request
// zero is a valid answer and means anonymous
type ActorPort interface {
	Parse(r *http.Request) (actorID int64, err error)
}

// Actor stamps the calling actor on the request context, where logger.C picks it up
// a nil port passes every request through as anonymous
func Actor(p ActorPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			id, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithActor(r.Context(), id)))
		})
	}
}
