/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "net/http"
    "strings"

    "github.com/JoshuaPurtell/sublinear/internal/config"
    "github.com/JoshuaPurtell/sublinear/internal/graph"
    "github.com/gin-gonic/gin"
    "github.com/graphql-go/graphql"
    "github.com/rs/zerolog"
)

type Handlers struct {
    cfg    config.Config
    log    zerolog.Logger
    schema graphql.Schema
}

func NewHandlers(cfg config.Config, log zerolog.Logger, schema graphql.Schema) *Handlers {
    return &Handlers{cfg: cfg, log: log, schema: schema}
}

func (h *Handlers) Root(c *gin.Context) {
    c.String(http.StatusOK, "sublinear: dev-only project tracking API replacement (NOT FOR PRODUCTION USE)")
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Playground(c *gin.Context) {
    c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(playgroundHTML))
}

func (h *Handlers) GraphQL(c *gin.Context) {
    var req struct {
        Query         string         `json:"query"`
        OperationName string         `json:"operationName"`
        Variables     map[string]any `json:"variables"`
    }
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "invalid request body"}}})
        return
    }
    // The credential decision is made once here; resolvers only consult it.
    ctx := graph.WithAuthorized(c.Request.Context(), h.authorizedRequest(c))
    result := graphql.Do(graphql.Params{
        Schema:         h.schema,
        RequestString:  req.Query,
        VariableValues: req.Variables,
        OperationName:  req.OperationName,
        Context:        ctx,
    })
    c.JSON(http.StatusOK, result)
}

// authorizedRequest: auth disabled means always allow; with a configured key
// the credential must match verbatim or with a Bearer prefix; otherwise any
// non-empty credential passes.
func (h *Handlers) authorizedRequest(c *gin.Context) bool {
    if !h.cfg.RequireAuth { return true }
    raw := strings.TrimSpace(c.GetHeader("Authorization"))
    if raw == "" { return false }
    if h.cfg.APIKey != "" {
        return raw == h.cfg.APIKey || raw == "Bearer "+h.cfg.APIKey
    }
    return true
}

const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
  <title>sublinear playground</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css" />
  <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
</head>
<body>
  <div id="root"></div>
  <script>
    window.addEventListener('load', function () {
      GraphQLPlayground.init(document.getElementById('root'), { endpoint: '/graphql' })
    })
  </script>
</body>
</html>`
