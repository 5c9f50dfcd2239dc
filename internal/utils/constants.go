package utils

// Ignore file constants used across the project.
const (
	// IgnoreFileName is the name of the project's own ignore file.
	IgnoreFileName = ".sumtreeignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// ConfigFileName is the default configuration file read at startup.
const ConfigFileName = "config.yaml"

// ExampleConfigFileName is the template written when no usable configuration file exists.
const ExampleConfigFileName = ConfigFileName + ".example"

// DefaultSummaryJSONFileName is the persisted intermediate tree shared by the two commands.
const DefaultSummaryJSONFileName = "code_summary_tree.json"

// DefaultSummaryTextFileName is the rendered text output of the render command.
const DefaultSummaryTextFileName = "code_summary_tree.txt"

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "unable to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal command errors.
const ApplicationExecutionFailedMessage = "application execution failed"
