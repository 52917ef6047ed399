package router

import (
    "github.com/labstack/echo/v4"

    "github.com/readswap/readswap/internal/handler"
    "github.com/readswap/readswap/internal/middleware"
)

// RegisterLoans registers the borrow flow.  Every route requires a
// JWT: borrowers submit and list their requests, lenders review
// incoming ones and drive the approve/decline/return transitions.
func RegisterLoans(e *echo.Echo, l *handler.LoanHandler, jwtSecret string) {
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(authRoles()...))

    auth.POST("/loans", l.Create)
    auth.GET("/loans", l.ListMine)
    auth.GET("/loans/approved", l.ListApproved)
    auth.GET("/loans/incoming", l.ListIncoming)
    auth.POST("/loans/:id/approve", l.Approve)
    auth.POST("/loans/:id/decline", l.Decline)
    auth.POST("/loans/:id/return", l.Return)
}
