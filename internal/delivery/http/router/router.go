// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"locus/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	GeolocHandler *handler.GeolocHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	geolocHandler *handler.GeolocHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		geolocHandler: params.GeolocHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	geolocGroup := e.Group("/geoloc")
	{
		geolocGroup.GET("/locations", r.geolocHandler.ListLocations)
		geolocGroup.GET("/profiles", r.geolocHandler.ListProfiles)
		geolocGroup.GET("/profiles/:id", r.geolocHandler.ShowProfile)
		geolocGroup.POST("/validate", r.geolocHandler.ValidateVarlist)
		geolocGroup.POST("/reload", r.geolocHandler.Reload)
	}
}
