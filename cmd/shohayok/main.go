// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the Shohayok editor core as an IPC server or as an
interactive CLI [DBG].

Note: This is a BETA release. APIs and functionality may rapidly change.

Shohayok is a Bangla writing assistant. It checks spelling against a word
list, corrects unknown words automatically or one by one, suggests whole
sentences from a sentence corpus while typing, imports text from images
with Tesseract and types what is spoken through the microphone.

# Usage

Start the server with the default data directory:

	shohayok

Use custom lexicon files and enable debug mode:

	shohayok -words bn_words.txt -sentences bn_sentences.txt -d

Run in CLI mode for interactive testing:

	shohayok -c

The data directory should contain words.txt and sentences.txt, one entry
per line. A missing or unreadable list is reported and the editor starts
with that list empty.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults
if it doesn't exist:

	[match]
	algorithm = "ratcliff"
	word_cutoff = 0.6
	sentence_cutoff = 0.3
	max_results = 5

	[dictation]
	language = "bn-BD"
	timeout_seconds = 5
	stop_keyword = "stop"

A file with bad values is recovered section by section.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Every request
names an action and gets one response with the same id:

	{"id": "1", "a": "set", "text": "আমি ভালা আছি"}
	{"id": "2", "a": "check"}

Manual correction sends "choose" messages and waits for "choice"
requests; dictation output arrives as "event" messages.

# Command Line Flags

	-data string
	    Directory containing words.txt and sentences.txt (default "data/")
	-words string
	    Word list file (overrides config)
	-sentences string
	    Sentence list file (overrides config)
	-config string
	    Path to a custom config file
	-c  Run in CLI mode instead of server mode
	-d  Enable debug mode with detailed logging
	-desktop-notify
	    Show notices as desktop notifications
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/shohayok/internal/cli"
	"github.com/bastiangx/shohayok/internal/logger"
	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/bastiangx/shohayok/pkg/config"
	"github.com/bastiangx/shohayok/pkg/editor"
	"github.com/bastiangx/shohayok/pkg/lexicon"
	"github.com/bastiangx/shohayok/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "shohayok"
	gh      = "https://github.com/bastiangx/shohayok"
)

// sigContext is cancelled on the first interrupt; a second one exits.
func sigContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx, cancel
}

// main wires config, lexicon and session and hands them to the server
// or the CLI. It does not implement logic for them.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "data/", "Directory containing the word and sentence lists")
	wordsPath := flag.String("words", "", "Word list file, one word per line (overrides config)")
	sentencesPath := flag.String("sentences", "", "Sentence list file, one sentence per line (overrides config)")
	configPath := flag.String("config", "", "Path to custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	desktopNotify := flag.Bool("desktop-notify", false, "Show notices as desktop notifications")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.SetDebug(*debugMode)

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		log.Print("Either env is not set or system is not supported")
		os.Exit(1)
	}

	appConfig, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))

	resolvedDataDir := pathResolver.GetDataDir(*dataDir)
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	words, sentences := appConfig.ResolveLexiconPaths(resolvedDataDir)
	if *wordsPath != "" {
		words = *wordsPath
	}
	if *sentencesPath != "" {
		sentences = *sentencesPath
	}

	var notifier editor.Notifier = editor.LogNotifier{}
	if *desktopNotify {
		notifier = editor.DesktopNotifier{Fallback: notifier}
	}

	lex, err := lexicon.Load(words, sentences)
	if err != nil {
		var loadErr *lexicon.LoadError
		if errors.As(err, &loadErr) {
			notifier.Error("Error", err.Error())
		} else {
			log.Errorf("Failed to load lexicon: %v", err)
			os.Exit(1)
		}
	}
	log.Debug("Lexicon loaded", "words", lex.WordCount(), "sentences", lex.SentenceCount())

	session, err := editor.FromConfig(appConfig, lex, notifier)
	if err != nil {
		log.Errorf("Failed to create editor session: %v", err)
		os.Exit(1)
	}
	defer session.Close()

	ctx, cancel := sigContext()
	defer cancel()

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(session, appConfig)
		if err := inputHandler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(session, appConfig)

	showStartupInfo(resolvedDataDir, lex.Stats())

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Server stopped: %v", err)
		os.Exit(1)
	}
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ Shohayok ] বাংলা লেখার সহায়ক")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir string, stats lexicon.Stats) {
	info := logger.New(AppName)
	info.SetLevel(log.InfoLevel)

	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("data dir: ( %s )", dataDir)
	info.Info("lexicon", "words", stats.Words, "sentences", stats.Sentences)
	info.Info("status: ready")
}
