package main

// Output formats.
const (
	FormatTree = "tree"
	FormatList = "list"
	FormatJSON = "json"
)

// Default limits for CLI commands.
const (
	DefaultHistoryLimit = 10
)

// Valid output formats per command.
var (
	validDeriveFormats    = []string{FormatList, FormatJSON}
	validRelationsFormats = []string{FormatTree, FormatList, FormatJSON}
)
