// Package cli assembles the gitguard command tree: it loads layered
// configuration, builds the zap logger, and registers the guard and publish
// command groups under a single cobra root.
package cli
