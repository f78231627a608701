// Package publish provides the cobra commands that commit and push selected
// paths, create and push release tags, list tags, check out a tag, and show
// recent commit subjects.
package publish
