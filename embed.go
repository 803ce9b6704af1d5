package contentdesk

import "embed"

// EmbeddedAssets holds the dashboard's static files, served under /public/.
//
//go:embed assets/*
var EmbeddedAssets embed.FS
