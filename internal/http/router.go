/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/gin-gonic/gin"
    "github.com/graphql-go/graphql"
    "github.com/rs/zerolog"
)

func NewRouter(cfg config.Config, log zerolog.Logger, schema graphql.Schema) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, log, schema)

    r.GET("/", h.Root)
    r.GET("/healthz", h.Healthz)
    r.GET("/graphql", h.Playground)
    r.POST("/graphql", h.GraphQL)

    return r
}
