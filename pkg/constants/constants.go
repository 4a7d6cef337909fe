// Package constants holds fixed values shared across the rpax CLI and its
// analysis packages.
package constants

// CLIExtensionPrefix is the prefix used in user-facing output to refer to the CLI.
const CLIExtensionPrefix = "rpax"

// SchemaVersion is the manifest/artifact schema version emitted by this build,
// per the MAJOR.MINOR.PATCH contract in spec.md §6.
const SchemaVersion = "0.1.0"

// DefaultConfigFileName is the config file searched for from CWD upward.
const DefaultConfigFileName = ".rpax.json"

// DefaultLakeDir is the default output directory for the artifact lake.
const DefaultLakeDir = ".rpax-lake"
