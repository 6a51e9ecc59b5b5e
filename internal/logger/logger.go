// Package logger provides tagged, colorized console output for the tracker.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + ansiReset
}

func line(color, level, tag, msg string) {
	ts := time.Now().Format("15:04:05")
	fmt.Printf("%s %s %s %s\n",
		paint(ansiDim, ts),
		paint(color, fmt.Sprintf("%-4s", level)),
		paint(ansiBold, fmt.Sprintf("[%s]", tag)),
		msg)
}

// Info logs a neutral progress message.
func Info(tag, msg string) { line(ansiBlue, "INFO", tag, msg) }

// Success logs a completed step.
func Success(tag, msg string) { line(ansiGreen, "OK", tag, msg) }

// Warn logs a recoverable problem.
func Warn(tag, msg string) { line(ansiYellow, "WARN", tag, msg) }

// Error logs a failure.
func Error(tag, msg string) { line(ansiRed, "ERR", tag, msg) }

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(ansiCyan, `
  ┌─┐┬  ┌─┐┌┬┐  ┌┬┐┬─┐┌─┐┌─┐┬┌─┌─┐┬─┐
  ├─┘│  ├─┤ │    │ ├┬┘├─┤│  ├┴┐├┤ ├┬┘
  ┴  ┴─┘┴ ┴ ┴    ┴ ┴└─┴ ┴└─┘┴ ┴└─┘┴└─`))
	fmt.Printf("  %s %s\n\n", paint(ansiBold, "plat-tracker"), paint(ansiDim, version))
}

// Section prints a visual separator before a group of log lines.
func Section(name string) {
	fmt.Printf("\n%s\n", paint(ansiBold, "── "+name+" "+"─────────────────────────"))
}

// Stats prints a key/value pair aligned for scan summaries.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s %v\n", paint(ansiDim, fmt.Sprintf("%-22s", key+":")), value)
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	Success("Server", fmt.Sprintf("Listening on http://%s", addr))
}
