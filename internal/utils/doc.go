// Package utils holds the configuration loader and logger factory shared by
// the gitguard commands.
package utils
