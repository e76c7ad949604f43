/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

type Config struct {
    AppEnv   string
    HTTPAddr string

    DBPath string

    PublicBaseURL string

    RequireAuth bool
    APIKey      string

    SeedViewerName  string
    SeedViewerEmail string
    SeedTeamName    string
    SeedTeamKey     string

    MaintenanceCron string
    HTTPTimeout     time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func boolenv(key string, def bool) bool {
    v := strings.TrimSpace(os.Getenv(key))
    if v == "" { return def }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func Load() Config {
    port := atoi("SUBLINEAR_PORT", 8787)
    return Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        HTTPAddr: getenv("HTTP_ADDR", "127.0.0.1:"+strconv.Itoa(port)),

        DBPath: getenv("SUBLINEAR_DB_PATH", "sublinear.db"),

        PublicBaseURL: getenv("SUBLINEAR_BASE_URL", "http://localhost:"+strconv.Itoa(port)),

        RequireAuth: boolenv("SUBLINEAR_REQUIRE_AUTH", true),
        APIKey:      getenv("SUBLINEAR_API_KEY", ""),

        SeedViewerName:  getenv("SUBLINEAR_SEED_VIEWER_NAME", "Sublinear Dev"),
        SeedViewerEmail: getenv("SUBLINEAR_SEED_VIEWER_EMAIL", "sublinear@example.com"),
        SeedTeamName:    getenv("SUBLINEAR_SEED_TEAM_NAME", "Synth"),
        SeedTeamKey:     getenv("SUBLINEAR_SEED_TEAM_KEY", "SYN"),

        MaintenanceCron: getenv("MAINTENANCE_CRON", "@hourly"),
        HTTPTimeout:     dur("HTTP_TIMEOUT", 15*time.Second),
    }
}
