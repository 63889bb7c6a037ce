package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1h" and integer nanoseconds.
//
// Only keys present in the file override the current Config; the bool is a
// pointer for that reason.
type JsonConfig struct {
	HTTPAddr                    string              `json:"http_addr"`
	DatabaseDSN                 string              `json:"database_dsn"`
	SecretKey                   string              `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration      `json:"access_token_validity_duration"`
	ResetTokenValidityDuration  timex.Duration      `json:"reset_token_validity_duration"`
	S3RootUser                  string              `json:"s3_root_user"`
	S3RootPassword              string              `json:"s3_root_password"`
	S3Bucket                    string              `json:"s3_bucket"`
	S3Region                    string              `json:"s3_region"`
	S3BaseEndpoint              string              `json:"s3_base_endpoint"`
	S3PublicURL                 string              `json:"s3_public_url"`
	LogMode                     string              `json:"log_mode"`
	CORSOrigins                 []string            `json:"cors_origins"`
	FrontendURL                 string              `json:"frontend_url"`
	PostmarkToken               string              `json:"postmark_token"`
	EmailSender                 string              `json:"email_sender"`
	OrderStatuses               []string            `json:"order_statuses"`
	InitialOrderStatus          string              `json:"initial_order_status"`
	StrictStatusTransitions     *bool               `json:"strict_status_transitions"`
	OrderTransitions            map[string][]string `json:"order_transitions"`
	RedisURL                    string              `json:"redis_url"`
	CatalogCacheTTL             timex.Duration      `json:"catalog_cache_ttl"`
	TracingExporter             string              `json:"tracing_exporter"`
	OTLPEndpoint                string              `json:"otlp_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag. Without the flag nothing is loaded. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration.Duration != 0 {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicURL, c.S3PublicURL)
	overlay(&config.LogMode, c.LogMode)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	overlay(&config.FrontendURL, c.FrontendURL)
	overlay(&config.PostmarkToken, c.PostmarkToken)
	overlay(&config.EmailSender, c.EmailSender)
	if len(c.OrderStatuses) > 0 {
		config.OrderStatuses = c.OrderStatuses
	}
	overlay(&config.InitialOrderStatus, c.InitialOrderStatus)
	if c.StrictStatusTransitions != nil {
		config.StrictStatusTransitions = *c.StrictStatusTransitions
	}
	if c.OrderTransitions != nil {
		config.OrderTransitions = c.OrderTransitions
	}
	overlay(&config.RedisURL, c.RedisURL)
	if c.CatalogCacheTTL.Duration != 0 {
		config.CatalogCacheTTL = c.CatalogCacheTTL.Duration
	}
	overlay(&config.TracingExporter, c.TracingExporter)
	overlay(&config.OTLPEndpoint, c.OTLPEndpoint)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
