package model

// Version is the released version, overridden at build time via
// -ldflags "-X pysweep/internal/model.Version=...".
var Version = "0.3.0"
