package version

// Value is overridden at release build time via -ldflags.
var Value = "v0.0.0-dev"
