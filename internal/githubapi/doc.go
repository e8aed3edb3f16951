// Package githubapi wraps the GitHub REST API operations required for
// default-branch migrations: branch reference reads and writes, open pull
// request enumeration, repository configuration updates, repository listings,
// and rate limit queries.
package githubapi
