package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/readswap/readswap/internal/config"
    "github.com/readswap/readswap/internal/handler"
    "github.com/readswap/readswap/internal/middleware"
    "github.com/readswap/readswap/internal/model"
)

// authRoles lists the roles admitted on protected routes.  Any member
// may both lend and borrow; ownership checks happen per resource, not
// per role.
func authRoles() []string {
    return []string{model.RoleLender, model.RoleBorrower}
}

// RegisterBooks registers catalog routes.  Browsing and search are
// public and sit behind the Redis response cache when one is
// configured; listing creation and edits require a JWT.
func RegisterBooks(e *echo.Echo, b *handler.BookHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
    cached := middleware.NewRedisCache(cacheCfg, rdb)

    e.GET("/v1/books", b.List, cached)
    e.GET("/v1/books/:id", b.Get, cached)
    e.GET("/v1/search/books", b.Search, cached)
    e.GET("/v1/genres", b.Genres, cached)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(authRoles()...))
    auth.POST("/books", b.Create)
    auth.PATCH("/books/:id", b.Update)
}
