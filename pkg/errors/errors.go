package errors

// Error message constants for the nice-import-sorting application
const (
	// File processing errors
	ErrMsgFailedToReadFile      = "failed to read file"
	ErrMsgFailedToSortImports   = "failed to sort imports"
	ErrMsgFailedToWriteFile     = "failed to write file"
	ErrMsgFailedToVerifySyntax  = "failed to verify syntax"
	ErrMsgRewriteBreaksSyntax   = "sorted output does not parse, file left unchanged"
	ErrMsgFailedToCreateWatcher = "failed to create file watcher"
	ErrMsgFailedToWatchPath     = "failed to watch path"

	// Directory processing errors
	ErrMsgFailedToCheckPath        = "failed to check path"
	ErrMsgFailedToFindSourceFiles  = "failed to find source files in directory"
	ErrMsgFilesFailedToProcess     = "%d files failed to process"
	ErrMsgFilesNeedSorting         = "%d files have unsorted imports"
	ErrMsgDirectoryRequiresInPlace = "directories can only be processed with --in-place or --check"

	// Configuration errors
	ErrMsgWatchWithCheck      = "--watch cannot be combined with --check"
	ErrMsgFailedToReadConfig  = "failed to read config file"
	ErrMsgFailedToParseConfig = "failed to parse config file"

	// Info/warning messages
	InfoMsgNoSourceFilesFound  = "No source files found in directory: %s"
	InfoMsgFoundSourceFiles    = "Found %d source files in directory: %s"
	InfoMsgConfigFile          = "Config file: %s"
	InfoMsgRoots               = "Roots: %s"
	InfoMsgGroups              = "Groups: %s"
	InfoMsgProcessedFiles      = "Processed: %s"
	InfoMsgUnsortedFile        = "Unsorted: %s"
	InfoMsgErrorProcessing     = "Error processing %s: %v"
	InfoMsgProcessedCount      = "\nProcessed %d files successfully"
	InfoMsgErrorCount          = ", %d files had errors"
	InfoMsgWatching            = "Watching %s for changes (Ctrl+C to stop)"
	InfoMsgWatcherError        = "watcher error: %v"
	InfoMsgSortingFailedOutput = "import sorting failed, printing the original file"
)
