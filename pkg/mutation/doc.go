// Package mutation builds response mutations from configuration.
//
// Every entry of config.ServerConfiguration.Mutations becomes one
// mapper.Mutation. An entry may be limited to request paths (doublestar
// globs), HTTP methods and a boolean "when" expression evaluated with
// expr-lang against the request outcome:
//
//	method    string  request method
//	path      string  request path
//	status    int     current response status
//	file      string  selected file, empty on error
//	error     string  selection error message, empty on success
//	notFound  bool    selection failed with not found
//
// Mutations that do not apply to a request are skipped without error.
package mutation
