package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
)

const (
	ServiceName = "PSI AI API"
	Version     = "1.0.0"
)

// Root returns basic service information
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": ServiceName,
			"version": Version,
			"docs":    "/docs",
		})
	}
}

// Health is the liveness probe
func Health() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	}
}

type routeInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Docs lists every registered route.
func Docs(app *fiber.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		routes := []routeInfo{}
		seen := map[routeInfo]bool{}
		for _, r := range app.GetRoutes(true) {
			if r.Method == fiber.MethodHead {
				continue
			}
			info := routeInfo{Method: r.Method, Path: r.Path}
			if seen[info] {
				continue
			}
			seen[info] = true
			routes = append(routes, info)
		}
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path == routes[j].Path {
				return routes[i].Method < routes[j].Method
			}
			return routes[i].Path < routes[j].Path
		})

		return c.JSON(fiber.Map{
			"name":    ServiceName,
			"version": Version,
			"auth":    "X-API-Key header required on every route except /, /health and /docs",
			"routes":  routes,
		})
	}
}
