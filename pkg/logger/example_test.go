package logger_test

import (
	"fmt"
	"os"

	"github.com/rpax-dev/rpax/pkg/logger"
)

func ExampleNew() {
	// Set DEBUG environment variable to enable loggers
	os.Setenv("DEBUG", "rpax:*")
	defer os.Unsetenv("DEBUG")

	// Create a logger for a specific namespace
	log := logger.New("rpax:xaml")

	// Check if logger is enabled
	if log.Enabled() {
		fmt.Println("Logger is enabled")
	}

	// Output: Logger is enabled
}

func ExampleComponent() {
	// Component namespaces a logger under "rpax:", the convention every
	// analysis package's package-level `log` variable follows.
	os.Setenv("DEBUG", "rpax:pipeline")
	defer os.Unsetenv("DEBUG")

	log := logger.Component("pipeline")
	if log.Enabled() {
		fmt.Println("Logger is enabled")
	}

	// Output: Logger is enabled
}

func ExampleLogger_Printf() {
	// Enable all loggers
	os.Setenv("DEBUG", "*")
	defer os.Unsetenv("DEBUG")

	log := logger.New("rpax:xaml")

	// Printf uses standard fmt.Printf formatting
	log.Printf("parsed %d nodes", 42)

	// Output to stderr: rpax:xaml parsed 42 nodes
}

func ExampleNew_patterns() {
	// Example patterns for DEBUG environment variable

	// Enable all loggers
	os.Setenv("DEBUG", "*")

	// Enable every rpax subsystem logger
	os.Setenv("DEBUG", "rpax:*")

	// Enable multiple namespaces
	os.Setenv("DEBUG", "rpax:xaml,rpax:pipeline")

	// Enable all except specific patterns
	os.Setenv("DEBUG", "*,-rpax:xaml")

	// Enable a namespace but exclude one of its sub-loggers
	os.Setenv("DEBUG", "rpax:*,-rpax:diagnostics")

	defer os.Unsetenv("DEBUG")
}
