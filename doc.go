// Package specscribe stages the documents a recruiter uploads (job
// specifications, CVs and interview documents) after checking each one
// against the intake policy for its kind.
//
// Every upload passes through [intake.Validate] first. A file that is too
// large or of an unsupported type is rejected with an
// [*intake.RejectionError] and nothing is written. Accepted files are
// streamed into a [FileSystem] under <kind>/<id>/<name>, with the size
// limit enforced again on the stream and a checksum computed on the way.
//
// # Storage Drivers
//
// Staging storage is pluggable through [RegisterDriver]. Two drivers ship
// with the module:
//
//   - In-memory (github.com/gobeaver/specscribe/driver/memory), the default
//   - Local directory (github.com/gobeaver/specscribe/driver/local)
//
// Drivers register themselves on import:
//
//	import _ "github.com/gobeaver/specscribe/driver/memory"
//
//	staging, err := specscribe.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := staging.Stage(ctx, specscribe.KindCV, file, content)
//	if intake.IsReason(err, intake.ReasonTooLarge) {
//	    // show the "File too large" notice
//	}
//
// # Configuration
//
// [GetConfig] reads BEAVER_SPECSCRIBE_* environment variables. Each
// document kind has its own size limit and accepted types; unset values
// keep the built-in policy for that kind. [WithPrefix] loads the same
// settings under a different prefix.
//
// # Watching
//
// Both drivers implement [CanWatch]. [StagingArea.OnStaged] runs a callback
// whenever documents of a kind are staged or discarded.
package specscribe
