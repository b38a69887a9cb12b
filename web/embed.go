package web

import "embed"

// StaticFS embeds the status dashboard assets.
//
//go:embed static/*
var StaticFS embed.FS
