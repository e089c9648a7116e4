// Package mapper maps HTTP requests onto response files stored in a directory tree.
//
// A request for METHOD /a/b is answered from the directory <base>/a/b. Inside
// that directory every regular file whose name stem equals the method, or
// starts with "<method>_", is a candidate (matching is case-insensitive):
//
//	responses/
//	  widgets/
//	    get.json           GET /widgets
//	    get_empty.json     GET /widgets (second call)
//	    post_created.json  POST /widgets
//
// When several candidates exist for one method they are served round-robin.
// The cursor for each directory lives in a CursorState that the caller creates
// once and shares between requests.
//
// # Pipeline
//
//	Request -> DirectoryResolver -> FilePicker -> Output -> Chain -> Response
//
// Missing directories and missing candidates produce a normal 404 response.
// Failures while resolving the directory (other than not-found) and failures
// raised by a Mutation abort the request instead of producing a response.
//
// # Usage
//
//	cursors := mapper.NewCursorState()
//	h := mapper.NewHandler(
//	    mapper.NewBaseDirResolver("./responses"),
//	    mapper.NewRoundRobinPicker(cursors, mapper.WithCreateMissing(true)),
//	    mapper.WithLogger(log),
//	)
//	http.ListenAndServe(":3000", h)
package mapper
