// Package guard provides the cobra commands that print the repository status
// and refuse to continue unless it matches an expected sequence of lines.
package guard
