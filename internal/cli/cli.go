// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/temirov/sumtree/internal/config"
	"github.com/temirov/sumtree/internal/output"
	"github.com/temirov/sumtree/internal/services/clipboard"
	"github.com/temirov/sumtree/internal/summarize"
	"github.com/temirov/sumtree/internal/tokenizer"
	"github.com/temirov/sumtree/internal/traverse"
	"github.com/temirov/sumtree/internal/tree"
	"github.com/temirov/sumtree/internal/utils"
)

const (
	exclusionFlagName   = "e"
	noGitignoreFlagName = "no-gitignore"
	noIgnoreFlagName    = "no-ignore"
	configFlagName      = "config"
	outputFlagName      = "output"
	tokensFlagName      = "tokens"
	printFlagName       = "print"
	copyFlagName        = "copy"
	versionFlagName     = "version"
	versionTemplate     = "sumtree version: %s\n"

	defaultRootPath      = "."
	rootUse              = "sumtree"
	rootShortDescription = "sumtree command line interface"
	rootLongDescription  = `sumtree builds a narrative map of a codebase.
The summarize command walks a directory tree, summarizes each text file through
an OpenAI-compatible API, and persists the nested summary tree as JSON. The
render command converts that JSON into an indented text tree for a file, the
console, or the clipboard.`
	versionFlagDescription = "display application version"

	summarizeUse              = "summarize [root]"
	summarizeAlias            = "s"
	summarizeShortDescription = "summarize a directory tree (" + summarizeAlias + ")"
	summarizeLongDescription  = `Walk the root directory, summarize every candidate text file through the
configured API, and persist the nested summary tree as JSON. Ignore rules come
from ` + utils.IgnoreFileName + ` and ` + utils.GitIgnoreFileName + ` in the root; use -e to add patterns.`
	summarizeUsageExample = `  # Summarize the current directory
  sumtree summarize

  # Summarize a project while excluding its vendor tree
  sumtree summarize -e vendor/ ~/src/project`

	renderUse              = "render [json-file]"
	renderAlias            = "r"
	renderShortDescription = "render a persisted summary tree (" + renderAlias + ")"
	renderLongDescription  = `Load a persisted summary tree and render it as indented text with box-drawing
connectors. The rendered tree is written to a text file and can additionally be
printed to the console or copied to the clipboard.`
	renderUsageExample = `  # Render the default summary file
  sumtree render

  # Print to the console and copy to the clipboard without writing a file
  sumtree render --print --copy --output ""`

	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not use " + utils.GitIgnoreFileName
	disableIgnoreFlagDescription    = "do not use " + utils.IgnoreFileName
	configFlagDescription           = "configuration file path"
	summarizeOutputFlagDescription  = "summary tree JSON file to write"
	tokensFlagDescription           = "log prompt token counts"
	renderOutputFlagDescription     = "rendered text file to write (empty disables)"
	printFlagDescription            = "print the rendered tree to standard output"
	copyFlagDescription             = "copy the rendered tree to the clipboard"

	summariesRecordedMessage = "summaries recorded"
	summaryTreeSavedMessage  = "summary tree saved"
	renderedTreeSavedMessage = "rendered tree saved"
	outputWriteFailedMessage = "failed to write output"
	clipboardCopyFailed      = "failed to copy rendered tree to clipboard"
	noSummariesMessage       = "no files were summarized"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	tokenizerErrorFormat        = "unable to initialize tokenizer: %w"
	rootNotDirectoryFormat      = "root path '%s' is not a directory"
)

// Execute runs the sumtree application with the provided logger.
func Execute(applicationLogger *zap.Logger) error {
	rootCommand := createRootCommand(applicationLogger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(applicationLogger *zap.Logger) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createSummarizeCommand(applicationLogger),
		createRenderCommand(applicationLogger),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// pathOptions stores configuration for ignore-related flags.
type pathOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
}

// createSummarizeCommand returns the summarize subcommand.
func createSummarizeCommand(applicationLogger *zap.Logger) *cobra.Command {
	var pathConfiguration pathOptions
	var configurationFilePath string
	var summaryJSONFilePath string = utils.DefaultSummaryJSONFileName
	var logTokenCounts bool

	summarizeCommand := &cobra.Command{
		Use:     summarizeUse,
		Aliases: []string{summarizeAlias},
		Short:   summarizeShortDescription,
		Long:    summarizeLongDescription,
		Example: summarizeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultRootPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			return runSummarize(applicationLogger, rootPath, configurationFilePath, summaryJSONFilePath, pathConfiguration, logTokenCounts)
		},
	}

	summarizeCommand.Flags().StringArrayVarP(&pathConfiguration.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	summarizeCommand.Flags().BoolVar(&pathConfiguration.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	summarizeCommand.Flags().BoolVar(&pathConfiguration.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	summarizeCommand.Flags().StringVar(&configurationFilePath, configFlagName, "", configFlagDescription)
	summarizeCommand.Flags().StringVar(&summaryJSONFilePath, outputFlagName, utils.DefaultSummaryJSONFileName, summarizeOutputFlagDescription)
	summarizeCommand.Flags().BoolVar(&logTokenCounts, tokensFlagName, false, tokensFlagDescription)
	return summarizeCommand
}

// createRenderCommand returns the render subcommand.
func createRenderCommand(applicationLogger *zap.Logger) *cobra.Command {
	var renderedTextFilePath string = utils.DefaultSummaryTextFileName
	var printToConsole bool
	var copyToClipboard bool

	renderCommand := &cobra.Command{
		Use:     renderUse,
		Aliases: []string{renderAlias},
		Short:   renderShortDescription,
		Long:    renderLongDescription,
		Example: renderUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			summaryJSONFilePath := utils.DefaultSummaryJSONFileName
			if len(arguments) == 1 {
				summaryJSONFilePath = arguments[0]
			}
			return runRender(applicationLogger, summaryJSONFilePath, renderedTextFilePath, printToConsole, copyToClipboard)
		},
	}

	renderCommand.Flags().StringVar(&renderedTextFilePath, outputFlagName, utils.DefaultSummaryTextFileName, renderOutputFlagDescription)
	renderCommand.Flags().BoolVar(&printToConsole, printFlagName, false, printFlagDescription)
	renderCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	return renderCommand
}

// runSummarize loads the configuration, walks the root, summarizes every
// candidate file, and persists the resulting summary tree. Only the missing
// credential check aborts before any traversal work begins; every later
// failure is contained at the file level.
func runSummarize(applicationLogger *zap.Logger, rootPath string, configurationFilePath string, summaryJSONFilePath string, pathConfiguration pathOptions, logTokenCounts bool) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	settings, settingsError := config.LoadSettings(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: configurationFilePath,
	}, applicationLogger)
	if settingsError != nil {
		return settingsError
	}

	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return fmt.Errorf("abs failed for '%s': %w", rootPath, absoluteError)
	}
	rootInformation, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		return fmt.Errorf("stat failed for '%s': %w", rootPath, statError)
	}
	if !rootInformation.IsDir() {
		return fmt.Errorf(rootNotDirectoryFormat, rootPath)
	}

	ignorePatterns, ignoreLoadError := config.LoadCombinedIgnorePatterns(
		absoluteRootPath,
		pathConfiguration.exclusionPatterns,
		!pathConfiguration.disableGitignore,
		!pathConfiguration.disableIgnoreFile,
	)
	if ignoreLoadError != nil {
		applicationLogger.Warn("failed to load ignore patterns, continuing with explicit exclusions only", zap.Error(ignoreLoadError))
		ignorePatterns = config.FallbackIgnorePatterns(pathConfiguration.exclusionPatterns)
	}

	walker := traverse.NewWalker(ignorePatterns, applicationLogger)
	candidateFiles, walkError := walker.Walk(absoluteRootPath)
	if walkError != nil {
		return walkError
	}

	summarizer, summarizerError := buildSummarizer(applicationLogger, settings, logTokenCounts)
	if summarizerError != nil {
		return summarizerError
	}

	flatMapping := summarizer.Run(context.Background(), candidateFiles)
	if flatMapping.Len() == 0 {
		applicationLogger.Warn(noSummariesMessage)
	}
	applicationLogger.Info(summariesRecordedMessage, zap.Int("count", flatMapping.Len()))

	summaryTree, buildError := tree.Build(flatMapping)
	if buildError != nil {
		return buildError
	}
	if writeError := tree.WriteFile(summaryTree, summaryJSONFilePath); writeError != nil {
		applicationLogger.Error(outputWriteFailedMessage, zap.Error(writeError))
		return writeError
	}
	applicationLogger.Info(summaryTreeSavedMessage, zap.String("path", summaryJSONFilePath))
	return nil
}

// buildSummarizer assembles the summarizer from the merged settings: the API
// client, the retry policy, the optional rate limiter, and the optional
// prompt token counter.
func buildSummarizer(applicationLogger *zap.Logger, settings config.Settings, logTokenCounts bool) (*summarize.Summarizer, error) {
	summarizer := &summarize.Summarizer{
		Completer:        summarize.NewOpenAIClient(settings.APIBase, settings.APIKey),
		Model:            settings.Model,
		Temperature:      settings.Temperature,
		MaxTokens:        settings.MaxTokens,
		PromptTokenLimit: settings.PromptTokenLimit,
		Retry:            summarize.NewRetryPolicy(settings.MaxRetries, settings.RetryDelay),
		LogTokenCounts:   logTokenCounts,
		Logger:           applicationLogger,
	}
	if settings.RateLimit > 0 {
		summarizer.Limiter = rate.NewLimiter(rate.Limit(settings.RateLimit), 1)
	}
	if logTokenCounts || settings.PromptTokenLimit > 0 {
		tokenCounter, tokenizerError := tokenizer.NewCounter(settings.Model)
		if tokenizerError != nil {
			return nil, fmt.Errorf(tokenizerErrorFormat, tokenizerError)
		}
		summarizer.TokenCounter = tokenCounter
	}
	return summarizer, nil
}

// runRender loads the persisted summary tree and writes its text rendering to
// the configured sinks. Sink failures are logged; the first one is returned
// after every sink had its chance.
func runRender(applicationLogger *zap.Logger, summaryJSONFilePath string, renderedTextFilePath string, printToConsole bool, copyToClipboard bool) error {
	summaryTree, readError := tree.ReadFile(summaryJSONFilePath)
	if readError != nil {
		return readError
	}

	var firstSinkError error

	if renderedTextFilePath != "" {
		if writeError := output.WriteTreeFile(summaryTree, renderedTextFilePath); writeError != nil {
			applicationLogger.Error(outputWriteFailedMessage, zap.Error(writeError))
			firstSinkError = writeError
		} else {
			applicationLogger.Info(renderedTreeSavedMessage, zap.String("path", renderedTextFilePath))
		}
	}

	if printToConsole {
		if printError := output.PrintTree(summaryTree, os.Stdout); printError != nil {
			applicationLogger.Error(outputWriteFailedMessage, zap.Error(printError))
			if firstSinkError == nil {
				firstSinkError = printError
			}
		}
	}

	if copyToClipboard {
		clipboardService := clipboard.NewService()
		if copyError := clipboardService.Copy(output.RenderText(summaryTree)); copyError != nil {
			applicationLogger.Error(clipboardCopyFailed, zap.Error(copyError))
			if firstSinkError == nil {
				firstSinkError = copyError
			}
		}
	}

	return firstSinkError
}
