// Package source supplies raw package records for graph construction.
//
// A [Source] produces the records of one workspace snapshot together with
// diagnostics for package directories that could not be read. Sources never
// build graphs themselves; pass [Result.Records] to dag.Build.
//
// # Sources
//
//   - [Static]: records already held in memory
//   - [Directories]: manifests read from package directories
//   - [Snapshot]: records from a previously exported graph file
//
// # Manifests
//
// [Directories] asks each [ManifestReader] in turn whether its manifest file
// exists in a directory and uses the first match. The built-in readers are
// [PackageJSON], [CargoToml], [GoMod] and [PyProject]; [DefaultReaders]
// returns them in that order.
//
// Manifests are read concurrently with a bounded worker pool. Results are
// sorted by directory afterwards, so the degree of concurrency never changes
// the output.
//
// # Discovery
//
// [Discover] finds package directories from the workspace declaration at the
// repository root (pnpm-workspace.yaml, the package.json workspaces field, or
// the [workspace] table of Cargo.toml) and [Expand] resolves glob patterns
// such as "packages/**".
package source
