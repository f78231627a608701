// Package gitrepo guards and publishes changes in a local git work tree.
//
// RepositoryManager compares the long porcelain status against expected
// lines (EnsureStatus and its presets) and performs the publishing steps a
// release script needs: checking paths for pending changes, committing and
// pushing them, creating and pushing annotated tags, listing tags, and
// checking out a tag. Every call shells out to git through a GitExecutor.
package gitrepo
