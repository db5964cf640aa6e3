package middleware

import (
	"net/http"
	"strings"

	"aid-portal/internal/domain"

	"github.com/labstack/echo/v4"
)

const (
	ActorKey = "actor"

	HeaderActorEmail = "X-Actor-Email"
	HeaderActorName  = "X-Actor-Name"
	HeaderActorRole  = "X-Actor-Role"
)

func SetActor(c echo.Context, actor domain.Actor) {
	c.Set(ActorKey, actor)
}

// ActorFrom returns the caller identity attached by the auth middleware.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	actor, ok := c.Get(ActorKey).(domain.Actor)
	return actor, ok
}

func actorFromHeaders(r *http.Request) (domain.Actor, error) {
	actor := domain.Actor{
		Email: strings.TrimSpace(r.Header.Get(HeaderActorEmail)),
		Name:  strings.TrimSpace(r.Header.Get(HeaderActorName)),
	}
	if raw := r.Header.Get(HeaderActorRole); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return domain.Actor{}, err
		}
		actor.Role = role
	}
	return actor, nil
}
