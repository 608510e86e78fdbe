// Package pawndex provides editor language intelligence for SourcePawn:
// completion candidates and signature help, computed from symbol tables that
// a line-oriented scanner extracts from source and include files.
//
// # Pipeline
//
// Each file is scanned once, front to back, into an immutable per-file table
// of declarations (defines, functions, methodmaps with their methods and
// properties, variables) and #include edges. The [Engine] keeps one table per
// path plus the tables of a base-API tree such as SourceMod's include
// directory, and publishes every change as a new snapshot.
//
// # Usage
//
//	e := pawndex.New(pawndex.WithLogger(log))
//	ctx := context.Background()
//	err := e.SetBaseAPI(ctx, "/opt/sourcemod/scripting/include")
//	err = e.Open(ctx, "plugin.sp")
//
//	items := e.Completions(pawndex.QueryContext{
//		Document:      "plugin.sp",
//		Position:      pawndex.Position{Line: 10, Character: 6},
//		PrecedingText: "\th.Clo",
//	})
//
// # Queries
//
// A [QueryBuilder] from [Engine.Query] answers every query against the same
// snapshot:
//
//   - [QueryBuilder.Completions]: declarations visible at the cursor, or the
//     members of a receiver's methodmap after "receiver.".
//   - [QueryBuilder.SignatureHelp]: the signature, documentation and active
//     argument of the call around the cursor.
//   - [QueryBuilder.Dependencies] and [QueryBuilder.Dependents]: include edges
//     from and to a file.
//
// Visibility follows includes: the document comes first, then the files it
// includes in breadth-first order, then the base API. Include cycles are
// walked once.
package pawndex
