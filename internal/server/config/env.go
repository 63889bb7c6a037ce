package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables.
//
// The file named by -env is loaded into the environment first (a missing
// file is an error); without the flag a ./.env file is loaded if present.
// Variables already set in the process environment take precedence over
// the file. Empty variables are ignored.
//
// Recognised variables: HTTP_ADDR, DATABASE_URL, JWT_SECRET,
// ACCESS_TOKEN_TTL, RESET_TOKEN_TTL (Go durations), S3_ACCESS_KEY,
// S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PUBLIC_URL, LOG_MODE,
// CORS_ORIGINS, FRONTEND_URL, POSTMARK_TOKEN, EMAIL_SENDER, ORDER_STATUSES,
// ORDER_INITIAL_STATUS, ORDER_STRICT_TRANSITIONS (comma separated lists),
// ORDER_TRANSITIONS ("new:packed|cancelled;packed:sent"),
// REDIS_URL, CATALOG_CACHE_TTL, TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT.
func parseEnv(config *Config) {
	if envFile := flagx.EnvFileFlags(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setString(&config.HTTPAddr, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDuration(&config.ResetTokenValidityDuration, "RESET_TOKEN_TTL")
	setString(&config.S3RootUser, "S3_ACCESS_KEY")
	setString(&config.S3RootPassword, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&config.S3PublicURL, "S3_PUBLIC_URL")
	setString(&config.LogMode, "LOG_MODE")
	setList(&config.CORSOrigins, "CORS_ORIGINS")
	setString(&config.FrontendURL, "FRONTEND_URL")
	setString(&config.PostmarkToken, "POSTMARK_TOKEN")
	setString(&config.EmailSender, "EMAIL_SENDER")
	setList(&config.OrderStatuses, "ORDER_STATUSES")
	setString(&config.InitialOrderStatus, "ORDER_INITIAL_STATUS")
	setBool(&config.StrictStatusTransitions, "ORDER_STRICT_TRANSITIONS")
	setTransitions(&config.OrderTransitions, "ORDER_TRANSITIONS")
	setString(&config.RedisURL, "REDIS_URL")
	setDuration(&config.CatalogCacheTTL, "CATALOG_CACHE_TTL")
	setString(&config.TracingExporter, "TRACING_EXPORTER")
	setString(&config.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func setBool(dst *bool, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}

func setList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = splitList(v)
	}
}

// splitList splits a comma separated list, trimming blanks and dropping
// empty elements.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// setTransitions parses "from:to1|to2;from2:to3". A malformed entry panics.
func setTransitions(dst *map[string][]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	graph := map[string][]string{}
	for _, entry := range strings.Split(v, ";") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		from, tos, ok := strings.Cut(entry, ":")
		from = strings.TrimSpace(from)
		if !ok || from == "" {
			panic(fmt.Sprintf("%s: malformed entry %q", key, entry))
		}
		for _, to := range strings.Split(tos, "|") {
			if to = strings.TrimSpace(to); to != "" {
				graph[from] = append(graph[from], to)
			}
		}
	}
	*dst = graph
}
